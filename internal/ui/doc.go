// Package ui implements an interactive terminal browser over Last.fm statistics using bubbletea's Elm architecture.
//
// Views:
//  1. [LoadingView] : statistics are being fetched
//  2. [SummaryView] : profile header and a menu of sections
//  3. [SectionView] : top tracks, top artists, or recent tracks
//
// The (view) [Model] implements the standard Init/Update/View pattern, receiving fetch results via the Msg union type.
//
// Keyboard navigation uses vim-style bindings (j/k, enter, esc, r, q) with contextual help displayed via charmbracelet/bubbles/help.
package ui
