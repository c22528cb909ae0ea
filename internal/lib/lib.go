// Package lib acts as a library for modules that do not fit
// strictly into other layers.
//
// Today it only holds small shared utilities.
package lib
