package enum

import "fmt"

// Segment is a time-windowed marketing classification. A client may belong
// to any number of segments at once.
type Segment string

const (
	SegmentNew       Segment = "new"
	SegmentReturning Segment = "returning"
	SegmentInactive  Segment = "inactive"
	SegmentAtRisk    Segment = "at_risk"
)

// AllSegments lists segments in display order.
func AllSegments() []Segment {
	return []Segment{SegmentNew, SegmentReturning, SegmentInactive, SegmentAtRisk}
}

func ParseSegment(s string) (Segment, error) {
	for _, seg := range AllSegments() {
		if string(seg) == s {
			return seg, nil
		}
	}
	return "", fmt.Errorf("unknown segment %q", s)
}

// MatchKind tells which identifier linked a contact to an existing client.
type MatchKind string

const (
	MatchKindNone  MatchKind = ""
	MatchKindEmail MatchKind = "email"
	MatchKindPhone MatchKind = "phone"
)
