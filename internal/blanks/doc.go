// Package blanks assigns calibration blanks to sample readings by acquisition
// time. The assignment is computed once per batch folder and is all-or-nothing:
// one unassignable sample rejects the batch.
package blanks
