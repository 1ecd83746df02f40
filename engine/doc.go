// Package engine is the top-level facade: it exposes the single
// Query(request) -> Response contract spec §6 describes, wiring the
// router, the strategy dispatcher, and the workflow engine together.
// Engine itself builds nothing — every collaborator (router, dispatcher,
// workflow executor/decomposer) is constructed and injected by the
// caller, the same narrow-interface, inject-your-collaborators shape
// every other package in this module follows.
package engine
