// SPDX-License-Identifier: MPL-2.0

// Package issue provides actionable error handling with user-friendly messages.
//
// ActionableError carries the failed operation, the resource involved and
// remediation hints. Issue guides are Markdown documents rendered with glamour
// and shown by "termemu guide <topic>" or after a fatal CLI error.
package issue
