// Package clipboard implements the result panel's copy action.
//
// A Panel writes the result URL through a Writer and keeps a Copied flag true
// for a confirmation window after each successful copy. Copying again while
// the flag is up restarts the window; only the most recent timer can clear
// the flag.
package clipboard
