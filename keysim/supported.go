package keysim

// SupportedKeys lists every alias the parser resolves by name: modifier
// aliases first, then named main keys, in table order. Single characters are
// always accepted and are not listed.
func SupportedKeys() []string {
	names := make([]string, 0, len(modifierAliases)+len(namedAliases))
	for _, a := range modifierAliases {
		names = append(names, a.name)
	}
	for _, a := range namedAliases {
		names = append(names, a.name)
	}
	return names
}
