// Package ui implements an interactive review session using bubbletea's Elm architecture.
//
// The session moves through four views:
//  1. [LoadingView] : Fetch due cards from the API
//  2. [DeckView] : Browse the due cards
//  3. [ReviewView] : Show the front, flip to the back, grade 0-5
//  4. [SummaryView] : Counts for the finished session
//
// The [Model] implements bubbletea's standard Init/Update/View pattern, receiving messages via the [Msg] union type.
// Reviews are submitted through a command so the view stays responsive while a request (and any token refresh) is in flight.
//
// Keyboard bindings (space, 0-5, s, enter, q) are shown with charmbracelet/bubbles/help.
package ui
