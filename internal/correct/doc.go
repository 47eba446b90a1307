// Package correct turns a raw sample spectrum and its assigned blank into a
// corrected result ready for upload. The computation is a pure function: blank
// subtraction, dilution and cuvette-length normalization, no I/O and no
// rounding beyond native float64 arithmetic.
package correct
