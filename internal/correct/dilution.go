package correct

// DilutionPolicy resolves the dilution factor for one sample. The lab does not
// yet record dilution in a lookup table, so the production policy is a
// constant; keeping it injectable leaves a seam for the future table without
// touching the corrector.
type DilutionPolicy func(serialNo string, year int) (int, error)

// ConstantDilution returns a policy that always yields the given factor.
func ConstantDilution(factor int) DilutionPolicy {
	return func(string, int) (int, error) {
		return factor, nil
	}
}
