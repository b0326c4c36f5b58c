package hotkey

// keyNameToRawcodes maps a normalized key name to the Windows virtual-key
// rawcodes gohook reports for it. Modifiers return both left and right
// variants. Returns nil for unknown names.
func keyNameToRawcodes(name string) []uint16 {
	switch name {
	case "ctrl":
		return []uint16{162, 163} // VK_LCONTROL, VK_RCONTROL
	case "alt":
		return []uint16{164, 165} // VK_LMENU, VK_RMENU
	case "shift":
		return []uint16{160, 161} // VK_LSHIFT, VK_RSHIFT
	case "cmd":
		return []uint16{91, 92} // VK_LWIN, VK_RWIN
	case "space":
		return []uint16{32}
	case "enter", "return":
		return []uint16{13}
	case "esc", "escape":
		return []uint16{27}
	case "tab":
		return []uint16{9}
	case "backspace":
		return []uint16{8}
	case "delete", "del":
		return []uint16{46}
	case "insert", "ins":
		return []uint16{45}
	case "home":
		return []uint16{36}
	case "end":
		return []uint16{35}
	case "pageup", "pgup":
		return []uint16{33}
	case "pagedown", "pgdn":
		return []uint16{34}
	case "left":
		return []uint16{37}
	case "up":
		return []uint16{38}
	case "right":
		return []uint16{39}
	case "down":
		return []uint16{40}
	}

	// Letters a-z: VK 0x41-0x5A.
	if len(name) == 1 && name[0] >= 'a' && name[0] <= 'z' {
		return []uint16{uint16(name[0] - 'a' + 0x41)}
	}
	// Digits 0-9: VK 0x30-0x39.
	if len(name) == 1 && name[0] >= '0' && name[0] <= '9' {
		return []uint16{uint16(name[0] - '0' + 0x30)}
	}
	// Function keys f1-f24: VK 0x70-0x87.
	if len(name) >= 2 && name[0] == 'f' {
		if n := atoiStrict(name[1:]); n >= 1 && n <= 24 {
			return []uint16{uint16(n-1) + 0x70}
		}
	}

	return nil
}

func atoiStrict(s string) int {
	n := 0
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return -1
		}
		n = n*10 + int(s[i]-'0')
	}
	if len(s) == 0 {
		return -1
	}
	return n
}
