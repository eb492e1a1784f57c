// Package clipboard moves images and text between the editor and the
// system clipboard: pasted images become image annotations, and exports
// can be copied out without touching disk. Backends are selected per
// platform, with a pure-X11 fallback when cgo is unavailable.
package clipboard
