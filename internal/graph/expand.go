package graph

import "github.com/hexmem/hexmem/internal/store"

// RelatedItem is one neighbor surfaced by one-hop expansion, shaped for
// direct use by the recall planner (§4.6: "attach under parent.related").
type RelatedItem struct {
	NeighborID      string
	NeighborType    string
	NeighborContent string
	Weight          float64
	Relation        string
	Direction       string // "outgoing" | "incoming"
}

// Expander performs the one-hop graph expansion step of recall.
type Expander struct {
	DB *store.DB
}

// ExpandOneHop fetches every edge incident to (nodeType, nodeID) for the
// agent and resolves each neighbor row, skipping edges whose target is
// gone (§4.8: edges are not foreign-keyed, so dangling edges are expected
// and must not fail the request).
func (e *Expander) ExpandOneHop(agentID, nodeType, nodeID string) ([]RelatedItem, error) {
	out, err := e.DB.EdgesFrom(agentID, nodeType, nodeID)
	if err != nil {
		return nil, err
	}
	in, err := e.DB.EdgesTo(agentID, nodeType, nodeID)
	if err != nil {
		return nil, err
	}

	var related []RelatedItem
	for _, edge := range out {
		content, err := e.DB.FetchItemContent(agentID, edge.TargetType, edge.TargetID)
		if err != nil {
			continue // dangling edge, skip
		}
		related = append(related, RelatedItem{
			NeighborID: edge.TargetID, NeighborType: edge.TargetType, NeighborContent: content,
			Weight: edge.Weight, Relation: edge.Relation, Direction: "outgoing",
		})
	}
	for _, edge := range in {
		content, err := e.DB.FetchItemContent(agentID, edge.SourceType, edge.SourceID)
		if err != nil {
			continue
		}
		related = append(related, RelatedItem{
			NeighborID: edge.SourceID, NeighborType: edge.SourceType, NeighborContent: content,
			Weight: edge.Weight, Relation: edge.Relation, Direction: "incoming",
		})
	}
	return related, nil
}
