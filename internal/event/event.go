// Package event defines the append-only event record and its tagged
// payload variants.
package event

import (
	"encoding/json"
	"time"
)

// Scope distinguishes the team-shared journal from the per-user local one.
type Scope string

const (
	ScopeShared Scope = "shared"
	ScopeLocal  Scope = "local"
)

// Type enumerates the event kinds the projector understands.
type Type string

const (
	TypeProjectCreated     Type = "PROJECT_CREATED"
	TypePurposeDeclared    Type = "PURPOSE_DECLARED"
	TypeStructureProposed  Type = "STRUCTURE_PROPOSED"
	TypeArtifactConfirmed  Type = "ARTIFACT_CONFIRMED"
	TypeQuestionRaised     Type = "QUESTION_RAISED"
	TypeQuestionResolved   Type = "QUESTION_RESOLVED"
	TypeChallengeRaised    Type = "CHALLENGE_RAISED"
	TypeEndorsed           Type = "ENDORSED"
	TypeEvidenceAttached   Type = "EVIDENCE_ATTACHED"
	TypeDeprecated         Type = "DEPRECATED"
	TypeLinkCreated        Type = "LINK_CREATED"
	TypeCommitCaptured     Type = "COMMIT_CAPTURED"
	TypeUnknown            Type = "UNKNOWN"
)

// Data is implemented by one concrete struct per Type. UnknownData
// implements it too, carrying the untouched payload for forward
// compatibility with event kinds this build doesn't know about.
type Data interface {
	eventData()
}

type ProjectCreatedData struct {
	Name string `json:"name"`
}

type PurposeDeclaredData struct {
	What string `json:"what"`
	Why  string `json:"why,omitempty"`
}

type StructureProposedData struct {
	ProposalType string `json:"proposal_type"`
	Summary      string `json:"summary"`
	Detail       string `json:"detail,omitempty"`
}

type ArtifactConfirmedData struct {
	ProposalID string `json:"proposal_id"`
	Type       string `json:"type"`
	Summary    string `json:"summary"`
	What       string `json:"what,omitempty"`
	Why        string `json:"why,omitempty"`
	Domain     string `json:"domain,omitempty"`
	PurposeID  string `json:"purpose_id,omitempty"`
}

type QuestionRaisedData struct {
	Summary string `json:"summary"`
}

type QuestionResolvedData struct {
	QuestionID string `json:"question_id"`
	Resolution string `json:"resolution,omitempty"`
}

type ChallengeRaisedData struct {
	TargetID string `json:"target_id"`
	Summary  string `json:"summary"`
}

type EndorsedData struct {
	TargetID string `json:"target_id"`
}

type EvidenceAttachedData struct {
	TargetID string `json:"target_id"`
	Evidence string `json:"evidence"`
}

type DeprecatedData struct {
	TargetID string `json:"target_id"`
	Reason   string `json:"reason,omitempty"`
}

type LinkCreatedData struct {
	SourceID string `json:"source_id"`
	TargetID string `json:"target_id"`
	Relation string `json:"relation"`
}

type CommitCapturedData struct {
	SHA       string   `json:"sha"`
	Message   string   `json:"message"`
	Artifacts []string `json:"artifacts,omitempty"`
}

// UnknownData preserves the raw payload of an event whose type this
// build does not recognize, per Design Notes §9's forgiving decoder.
type UnknownData struct {
	Raw json.RawMessage `json:"-"`
}

func (ProjectCreatedData) eventData()    {}
func (PurposeDeclaredData) eventData()   {}
func (StructureProposedData) eventData() {}
func (ArtifactConfirmedData) eventData() {}
func (QuestionRaisedData) eventData()    {}
func (QuestionResolvedData) eventData()  {}
func (ChallengeRaisedData) eventData()   {}
func (EndorsedData) eventData()          {}
func (EvidenceAttachedData) eventData()  {}
func (DeprecatedData) eventData()        {}
func (LinkCreatedData) eventData()       {}
func (CommitCapturedData) eventData()    {}
func (UnknownData) eventData()           {}

// Event is the immutable, append-only record. Once written the tuple
// (ID, Type, Data, CreatedAt, Scope, ParentIDs) is never modified.
type Event struct {
	ID        string    `json:"id"`
	Type      Type      `json:"type"`
	Data      Data      `json:"data"`
	CreatedAt time.Time `json:"created_at"`
	Scope     Scope     `json:"scope"`
	ParentIDs []string  `json:"parent_ids,omitempty"`

	// AppendIndex is the position this event occupied in its journal at
	// append time. It is not part of the wire record; it is assigned by
	// the EventLog on read and used as the primary projection ordering
	// key (spec §4.2 Determinism).
	AppendIndex int `json:"-"`
}
