// Package core holds the exploration logic: what to show for an uploaded
// table and which charts to produce for the current column selection.
//
// The package has no UI dependencies. The web server and the explorer CLI
// both drive it through the same functions.
//
// # Flow
//
// An upload is parsed by the table package, then:
//
//  1. [ClassifyColumns] splits the columns into numeric and categorical sets.
//  2. [DescribeTable] builds the preview and per-column statistics.
//  3. [SelectAxes] and [SelectCategorical] pick default or prior selections.
//  4. [RenderScatter], [RenderHistogram] and [RenderPie] turn the selection
//     into chart specifications.
//
// All of these are pure functions of the table and the selection. Nothing
// is cached.
//
// # Sessions
//
// A [Session] owns one table and its [Selection]. The [Controller] moves a
// session between [StateEmpty] and [StateLoaded]:
//
//	view, err := ctrl.Load(ctx, sess, "people.csv", data)   // Empty -> Loaded
//	view, err = ctrl.Handle(ctx, sess, Event{Kind: EventX, Column: "age"})
//	view = ctrl.Reset(ctx, sess)                             // -> Empty
//
// Every call returns a fresh [View]. A failed load leaves the session Empty,
// so nothing from the previous table is rendered next to the error.
//
// Sessions live in a [SessionStore] and expire after an idle TTL.
//
// # Error Handling
//
// Technical errors are mapped to user-facing messages with [MapError].
// See error_messages.go for the code reference.
package core
