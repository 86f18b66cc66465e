// Package navjs reads and writes the JavaScript data files Doxygen emits for its
// navigation panel: navtreedata.js, navtreeindexN.js and the per-page and
// per-file scripts that hold lazily loaded subtrees.
//
// The files are sequences of `var NAME = VALUE;` statements whose values are
// JSON literals (arrays, objects keyed by URL, strings), with the exception of
// the single-quoted SYNCONMSG/SYNCOFFMSG strings. Parse splits a file into
// statements; the Decode functions turn values into navmodel types; Writer
// emits them in Doxygen's layout.
package navjs
