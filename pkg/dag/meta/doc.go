// Package meta reads and edits the per-step metadata of workflow graphs.
//
// A step carries two attributes: a display title, stored with spaces encoded
// as underscores because the text encoding drops whitespace, and an optional
// link to another graph that details the step (a sub-graph). [Edit] changes
// them through an ordered decision table; [Export] decodes them for display.
package meta
