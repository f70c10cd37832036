package textcrdt

import (
	"fmt"
	"sort"

	"github.com/google/uuid"
)

// Runtime is the external collaborator a Replica depends on for two
// things it cannot provide itself: unique id generation and outbound
// delivery. A Replica is handed one at construction time and never
// assumes anything about how sendPrimitive's bytes eventually reach
// other replicas.
type Runtime interface {
	// GetUID returns a globally unique, totally ordered (by lexical byte
	// order) id. Never reused.
	GetUID() string
	// SendPrimitive hands an encoded operation to the runtime for
	// broadcast. The runtime will eventually invoke ReceivePrimitive on
	// every attached replica, including the sender, with these same
	// bytes, in causal order.
	SendPrimitive(data []byte) error
}

// Meta carries opaque causal metadata that ReceivePrimitive forwards into
// emitted events. InMemoryRuntime's Meta is just an origin tag and a
// global sequence number; a production runtime would carry vector
// clocks or log offsets here instead.
type Meta struct {
	Origin string
	Seq    uint64
}

// Network is a reference, in-process implementation of the runtime
// contract: every attached replica's sends are broadcast synchronously
// to every attached replica (including the sender, so it applies its
// own operations the same way it applies remote ones), in attachment
// order, preserving FIFO delivery per sender so causally dependent ops
// from one origin are never reordered. It exists so the core is
// actually exercisable end to end in tests and cmd/textcrdt-sim; it is
// not a production transport (no serialization boundary beyond the
// wire encoding itself, no partitioning, no retries).
type Network struct {
	order    []string
	replicas map[string]*Replica
	seq      uint64
}

// NewNetwork creates an empty in-memory network.
func NewNetwork() *Network {
	return &Network{replicas: make(map[string]*Replica)}
}

// Attach returns the Runtime a replica named name should be constructed
// with. It does not register anything by itself: the replica joins the
// network's delivery list when NewReplica binds it to this runtime.
// name must be unique within the network and is
// used as the id tiebreak suffix so GetUID remains a strict total order
// across replicas sharing a millisecond.
func (net *Network) Attach(name string) *InMemoryRuntime {
	return &InMemoryRuntime{network: net, name: name}
}

// register records r under the name its runtime was created with, so the
// network can deliver broadcasts to it. Replica calls this once during
// construction.
func (net *Network) register(name string, r *Replica) {
	if _, exists := net.replicas[name]; !exists {
		net.order = append(net.order, name)
	}
	net.replicas[name] = r
}

func (net *Network) broadcast(origin string, data []byte) error {
	net.seq++
	meta := Meta{Origin: origin, Seq: net.seq}
	for _, name := range net.order {
		r := net.replicas[name]
		if err := r.ReceivePrimitive(data, meta); err != nil {
			return fmt.Errorf("textcrdt: replica %s failed to receive from %s: %w", name, origin, err)
		}
	}
	return nil
}

// InMemoryRuntime is the Runtime a Replica attached to a Network uses.
type InMemoryRuntime struct {
	network *Network
	name    string
}

// GetUID returns a UUIDv7 (time-ordered, so lexically-comparable ids
// mostly sort by creation time) suffixed with the replica's network
// name, guaranteeing no two replicas ever mint the same id even within
// the same millisecond.
func (rt *InMemoryRuntime) GetUID() string {
	return uuid.Must(uuid.NewV7()).String() + "-" + rt.name
}

// SendPrimitive broadcasts data to every replica attached to the network,
// including this runtime's own replica.
func (rt *InMemoryRuntime) SendPrimitive(data []byte) error {
	return rt.network.broadcast(rt.name, data)
}

// sortedReplicaNames is a small test/debug helper: the names of the
// registered replicas, sorted lexically (not in the attach order the
// Network delivers in), exposed for assertions.
func (net *Network) sortedReplicaNames() []string {
	names := make([]string, len(net.order))
	copy(names, net.order)
	sort.Strings(names)
	return names
}
