// Package ui implements an interactive terminal interface using bubbletea's Elm architecture.
//
// The TUI hosts every client operation in one session:
//  1. [ChapterListView] : Browse chapters with their translation snippets and progress
//  2. [UploadView] : Enter a file path or paste text to upload
//  3. [RangeView] : Enter the chapter range, API keys and prompt to translate
//  4. [TitleView] : Name the book before exporting an EPUB
//
// Alerts are shown as a modal over the current view and dismissed with enter or esc.
// Inline results go to the status line.
//
// The (view) [Model] implements bubbletea/Elm's standard Init/Update/View pattern, receiving messages via the Msg union type.
// Operations run as commands against [tasks.Controller], which reports back through a [ChannelPresenter] and a progress channel.
//
// [RenderChapterList] and [RenderResult] are shared with the non-interactive CLI.
package ui
