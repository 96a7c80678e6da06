package event

import (
	"encoding/json"
	"fmt"
)

// wireEvent mirrors Event's on-disk shape (spec §6 event record format):
// one JSON object per line, self-delimiting, UTF-8.
type wireEvent struct {
	ID        string          `json:"id"`
	Type      Type            `json:"type"`
	Data      json.RawMessage `json:"data"`
	CreatedAt string          `json:"created_at"`
	Scope     Scope           `json:"scope"`
	ParentIDs []string        `json:"parent_ids,omitempty"`
}

// Marshal encodes an Event as a single self-delimiting JSON line.
func Marshal(e Event) ([]byte, error) {
	raw, err := json.Marshal(e.Data)
	if err != nil {
		return nil, fmt.Errorf("event %s: marshal data: %w", e.ID, err)
	}
	w := wireEvent{
		ID:        e.ID,
		Type:      e.Type,
		Data:      raw,
		CreatedAt: e.CreatedAt.UTC().Format(rfc3339Micro),
		Scope:     e.Scope,
		ParentIDs: e.ParentIDs,
	}
	return json.Marshal(w)
}

const rfc3339Micro = "2006-01-02T15:04:05.999999999Z07:00"

// Unmarshal decodes a single JSON line into an Event. Unrecognized types
// are never rejected: they decode into an Event whose Data is
// UnknownData carrying the untouched payload, so a future build's
// event kinds don't corrupt replay on an older one.
func Unmarshal(line []byte) (Event, error) {
	var w wireEvent
	if err := json.Unmarshal(line, &w); err != nil {
		return Event{}, fmt.Errorf("decode event record: %w", err)
	}

	createdAt, err := parseTimestamp(w.CreatedAt)
	if err != nil {
		return Event{}, fmt.Errorf("event %s: %w", w.ID, err)
	}

	data, err := decodeData(w.Type, w.Data)
	if err != nil {
		return Event{}, fmt.Errorf("event %s: %w", w.ID, err)
	}

	return Event{
		ID:        w.ID,
		Type:      w.Type,
		Data:      data,
		CreatedAt: createdAt,
		Scope:     w.Scope,
		ParentIDs: w.ParentIDs,
	}, nil
}

func decodeData(t Type, raw json.RawMessage) (Data, error) {
	var dst Data
	switch t {
	case TypeProjectCreated:
		dst = &ProjectCreatedData{}
	case TypePurposeDeclared:
		dst = &PurposeDeclaredData{}
	case TypeStructureProposed:
		dst = &StructureProposedData{}
	case TypeArtifactConfirmed:
		dst = &ArtifactConfirmedData{}
	case TypeQuestionRaised:
		dst = &QuestionRaisedData{}
	case TypeQuestionResolved:
		dst = &QuestionResolvedData{}
	case TypeChallengeRaised:
		dst = &ChallengeRaisedData{}
	case TypeEndorsed:
		dst = &EndorsedData{}
	case TypeEvidenceAttached:
		dst = &EvidenceAttachedData{}
	case TypeDeprecated:
		dst = &DeprecatedData{}
	case TypeLinkCreated:
		dst = &LinkCreatedData{}
	case TypeCommitCaptured:
		dst = &CommitCapturedData{}
	default:
		return UnknownData{Raw: append(json.RawMessage(nil), raw...)}, nil
	}

	if len(raw) > 0 {
		if err := json.Unmarshal(raw, dst); err != nil {
			return nil, fmt.Errorf("decode %s payload: %w", t, err)
		}
	}

	switch v := dst.(type) {
	case *ProjectCreatedData:
		return *v, nil
	case *PurposeDeclaredData:
		return *v, nil
	case *StructureProposedData:
		return *v, nil
	case *ArtifactConfirmedData:
		return *v, nil
	case *QuestionRaisedData:
		return *v, nil
	case *QuestionResolvedData:
		return *v, nil
	case *ChallengeRaisedData:
		return *v, nil
	case *EndorsedData:
		return *v, nil
	case *EvidenceAttachedData:
		return *v, nil
	case *DeprecatedData:
		return *v, nil
	case *LinkCreatedData:
		return *v, nil
	case *CommitCapturedData:
		return *v, nil
	}
	return nil, fmt.Errorf("unreachable: unhandled data type %T", dst)
}
