// Package navmodel defines the documentation navigation data model: page trees,
// per-file symbol listings and flat index entries, plus the traversal and
// validation helpers every other package builds on.
//
// All traversal is pre-order in declaration order. Nothing in this package
// reorders children.
package navmodel
