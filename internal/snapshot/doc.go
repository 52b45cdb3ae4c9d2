// Package snapshot resolves a frozen configuration cache into a tree of named
// sections. The cache is never parsed directly: an external Evaluator executes
// it and emits JSON, which is decoded with numbers kept in their decimal text
// form.
package snapshot
