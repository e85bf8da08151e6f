// Package semantic integrates an external AI matching service into search.
//
// The Bridge interface is the engine's only I/O dependency: one method,
// context-bounded, injectable. Tests substitute scripted fakes for success,
// failure, and slow-response behavior without network access.
//
// # Contract
//
//	bridge := semantic.NewHTTPBridge(endpoint, apiKey, semantic.DefaultTimeout)
//
//	cands, err := bridge.SemanticSearch(ctx, "payroll abend", entries)
//
// The request body is {query, entries}; the response is an ordered list of
// {entry_id, score, explanation?, match_type?} with scores in [0,1].
// Responses carrying scores outside [0,1] or empty entry IDs are rejected as
// malformed.
//
// # Failure Mode
//
// Whatever a Bridge returns as an error, timeout included, the engine treats
// as "no semantic candidates" and serves local results. The error never
// reaches the search caller; this fallback is part of the search contract,
// not an optimization.
package semantic
