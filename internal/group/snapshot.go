package group

import (
	"fmt"
	"sort"

	"github.com/Bassline-Org/bassline-sub010/internal/contact"
	"github.com/Bassline-Org/bassline-sub010/internal/lattice"
	"github.com/Bassline-Org/bassline-sub010/internal/wire"
)

// Snapshot is the flattened, self-contained export of a group tree: a
// JSON-serializable map from group id to its record set. It is the persisted
// and transmitted representation; Hydrate reconstructs an equivalent arena
// structure from it.
type Snapshot map[string]*GroupRecord

// GroupRecord is the serialized form of one group.
type GroupRecord struct {
	ID          string           `json:"id"`
	Contacts    []*ContactRecord `json:"contacts"`
	Wires       []*WireRecord    `json:"wires"`
	SubgroupIDs []string         `json:"subgroups,omitempty"`
	Boundary    []string         `json:"boundary,omitempty"`
	PrimitiveID string           `json:"primitive,omitempty"`
}

// ContactRecord is the serialized form of one contact.
type ContactRecord struct {
	ID        string        `json:"id"`
	Content   lattice.Value `json:"content"`
	Blend     string        `json:"blend"`
	Boundary  bool          `json:"boundary,omitempty"`
	Direction string        `json:"direction,omitempty"`
}

// WireRecord is the serialized form of one wire.
type WireRecord struct {
	ID   string `json:"id"`
	From string `json:"from"`
	To   string `json:"to"`
	Kind string `json:"kind"`
}

// Flatten produces the snapshot of a group and every group it transitively
// contains. Record lists are sorted by id so the output is deterministic.
func (a *Arena) Flatten(groupID string) (Snapshot, error) {
	if _, ok := a.groups[groupID]; !ok {
		return nil, fmt.Errorf("group %q not found", groupID)
	}
	snap := make(Snapshot)
	pending := []string{groupID}
	for len(pending) > 0 {
		id := pending[0]
		pending = pending[1:]
		g, ok := a.groups[id]
		if !ok {
			return nil, fmt.Errorf("subgroup %q not found while flattening %q", id, groupID)
		}
		snap[id] = recordOf(g)
		pending = append(pending, g.SubgroupIDs...)
	}
	return snap, nil
}

// Record returns the serialized view of a single group, without descending
// into subgroups. This is the engine's per-group state report.
func (a *Arena) Record(groupID string) (*GroupRecord, error) {
	g, ok := a.groups[groupID]
	if !ok {
		return nil, fmt.Errorf("group %q not found", groupID)
	}
	return recordOf(g), nil
}

func recordOf(g *Group) *GroupRecord {
	rec := &GroupRecord{
		ID:          g.ID,
		Contacts:    make([]*ContactRecord, 0, len(g.Contacts)),
		Wires:       make([]*WireRecord, 0, len(g.Wires)),
		SubgroupIDs: append([]string(nil), g.SubgroupIDs...),
		Boundary:    append([]string(nil), g.BoundaryContactIDs...),
		PrimitiveID: g.PrimitiveID,
	}
	for _, c := range g.Contacts {
		rec.Contacts = append(rec.Contacts, &ContactRecord{
			ID:        c.ID,
			Content:   c.Content,
			Blend:     c.Blend.String(),
			Boundary:  c.Boundary,
			Direction: c.Direction.String(),
		})
	}
	sort.Slice(rec.Contacts, func(i, j int) bool { return rec.Contacts[i].ID < rec.Contacts[j].ID })
	for _, w := range g.Wires {
		rec.Wires = append(rec.Wires, &WireRecord{ID: w.ID, From: w.From, To: w.To, Kind: w.Kind.String()})
	}
	sort.Slice(rec.Wires, func(i, j int) bool { return rec.Wires[i].ID < rec.Wires[j].ID })
	return rec
}

// Hydrate reconstructs a snapshot's group tree inside this arena and returns
// the root group id. All ids in the snapshot must be free in the arena.
// Primitive ids are not resolved here; the engine re-binds gadgets against
// its registry after hydration.
func (a *Arena) Hydrate(snap Snapshot) (string, error) {
	rootID, err := snapshotRoot(snap)
	if err != nil {
		return "", err
	}

	// Pass 1: create groups and their contacts, parents before children.
	var create func(parentID, id string) error
	create = func(parentID, id string) error {
		rec, ok := snap[id]
		if !ok {
			return fmt.Errorf("snapshot references group %q but does not contain it", id)
		}
		if _, err := a.CreateGroup(parentID, id, rec.PrimitiveID); err != nil {
			return err
		}
		for _, cr := range rec.Contacts {
			c, err := contactFromRecord(cr)
			if err != nil {
				return fmt.Errorf("group %q: %w", id, err)
			}
			if err := a.AddContact(id, c); err != nil {
				return err
			}
		}
		for _, subID := range rec.SubgroupIDs {
			if err := create(id, subID); err != nil {
				return err
			}
		}
		return nil
	}
	if err := create("", rootID); err != nil {
		return "", err
	}

	// Pass 2: boundaries, children before parents so re-exports resolve.
	var expose func(id string) error
	expose = func(id string) error {
		rec := snap[id]
		for _, subID := range rec.SubgroupIDs {
			if err := expose(subID); err != nil {
				return err
			}
		}
		for _, bid := range rec.Boundary {
			if err := a.ExposeBoundary(id, bid); err != nil {
				return err
			}
		}
		// Keep the recorded order, not the owned-first order AddContact built.
		a.groups[id].BoundaryContactIDs = append([]string(nil), rec.Boundary...)
		return nil
	}
	if err := expose(rootID); err != nil {
		return "", err
	}

	// Pass 3: wires, now that boundaries make endpoints reachable.
	for _, id := range sortedKeys(snap) {
		for _, wr := range snap[id].Wires {
			kind, err := wire.ParseKind(wr.Kind)
			if err != nil {
				return "", fmt.Errorf("group %q wire %q: %w", id, wr.ID, err)
			}
			w := &wire.Wire{ID: wr.ID, From: wr.From, To: wr.To, Kind: kind}
			if err := a.AddWire(id, w); err != nil {
				return "", err
			}
		}
	}

	if err := a.Validate(rootID); err != nil {
		return "", err
	}
	return rootID, nil
}

func contactFromRecord(cr *ContactRecord) (*contact.Contact, error) {
	blend, err := contact.ParseBlendMode(cr.Blend)
	if err != nil {
		return nil, fmt.Errorf("contact %q: %w", cr.ID, err)
	}
	dir, err := contact.ParseDirection(cr.Direction)
	if err != nil {
		return nil, fmt.Errorf("contact %q: %w", cr.ID, err)
	}
	return &contact.Contact{
		ID:        cr.ID,
		Content:   cr.Content,
		Blend:     blend,
		Boundary:  cr.Boundary,
		Direction: dir,
	}, nil
}

// snapshotRoot finds the single group no other record lists as a subgroup.
func snapshotRoot(snap Snapshot) (string, error) {
	if len(snap) == 0 {
		return "", fmt.Errorf("snapshot is empty")
	}
	referenced := make(map[string]bool)
	for _, rec := range snap {
		for _, subID := range rec.SubgroupIDs {
			referenced[subID] = true
		}
	}
	var roots []string
	for id := range snap {
		if !referenced[id] {
			roots = append(roots, id)
		}
	}
	if len(roots) != 1 {
		sort.Strings(roots)
		return "", fmt.Errorf("snapshot must contain exactly one root group, found %d %v", len(roots), roots)
	}
	return roots[0], nil
}

func sortedKeys(snap Snapshot) []string {
	keys := make([]string, 0, len(snap))
	for k := range snap {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
