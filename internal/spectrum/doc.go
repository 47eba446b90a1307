// Package spectrum parses raw UV-absorbance instrument files.
//
// An instrument file is a fixed 86-line Latin-1 header followed by exactly 701
// whitespace-delimited (wavelength, value) rows. The acquisition timestamp
// lives on header lines 6 and 7. Read validates the full table; deviating row
// counts or duplicate wavelengths are format errors, never tolerated silently.
package spectrum
