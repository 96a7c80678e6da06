// Package babel provides a minimal public API for embedding the
// reasoning substrate in other Go programs.
//
// Most callers should build an Environment with Open or Init and work
// against its collaborators directly. This package exports only the
// handful of types a Go-based extension needs to append events, read
// the graph projection, and resolve references without reaching into
// internal packages.
package babel

import (
	"github.com/ktiyab/babel-tool-sub001/internal/env"
	"github.com/ktiyab/babel-tool-sub001/internal/event"
	"github.com/ktiyab/babel-tool-sub001/internal/graph"
	"github.com/ktiyab/babel-tool-sub001/internal/resolver"
)

// Environment is the full set of wired collaborators for one project.
type Environment = env.Environment

// Open wires an Environment for an existing project, discovered by
// walking up from start. Use Init to create a new project.
func Open(start string) (*Environment, error) { return env.Open(start) }

// Init creates a new project's .babel directory at root and wires an
// Environment over it.
func Init(root string) (*Environment, error) { return env.Init(root) }

// Core event and graph types for working with the reasoning substrate.
type (
	Event     = event.Event
	EventType = event.Type
	Scope     = event.Scope
	Node      = graph.Node
	NodeType  = graph.NodeType
	Graph     = graph.Graph
)

// Event scopes.
const (
	ScopeShared = event.ScopeShared
	ScopeLocal  = event.ScopeLocal
)

// Node type constants.
const (
	NodeProject     = graph.NodeProject
	NodePurpose     = graph.NodePurpose
	NodeDecision    = graph.NodeDecision
	NodeConstraint  = graph.NodeConstraint
	NodePrinciple   = graph.NodePrinciple
	NodeRequirement = graph.NodeRequirement
	NodeTension     = graph.NodeTension
	NodeQuestion    = graph.NodeQuestion
	NodeMemo        = graph.NodeMemo
	NodeTopic       = graph.NodeTopic
	NodeSymbol      = graph.NodeSymbol
	NodeCommit      = graph.NodeCommit
)

// Resolver fuzzily resolves a short reference (an id prefix, a name
// fragment) against the live graph projection.
type Resolver = resolver.Resolver

// ResolveStatus reports how confidently a reference resolved.
type ResolveStatus = resolver.Status
