package provision

import (
	"bufio"
	"strings"
)

// Inventory maps installed package names to their versions. Lookups are exact:
// a name that is only a substring of an installed package is not installed.
type Inventory map[string]string

// Has reports whether name is installed.
func (inv Inventory) Has(name string) bool {
	_, ok := inv[name]
	return ok
}

// Version returns the installed version of name.
func (inv Inventory) Version(name string) (string, bool) {
	v, ok := inv[name]
	return v, ok
}

// dpkgQueryFormat is passed to dpkg-query -W -f.
const dpkgQueryFormat = "${Package}\t${Version}\t${db:Status-Status}\n"

// ParseDpkg parses dpkg-query output produced with dpkgQueryFormat.
// Packages whose status is not "installed" (removed, config-files) are ignored.
func ParseDpkg(output string) Inventory {
	inv := make(Inventory)
	scanner := bufio.NewScanner(strings.NewReader(output))
	for scanner.Scan() {
		fields := strings.Split(scanner.Text(), "\t")
		if len(fields) < 3 || fields[0] == "" {
			continue
		}
		if strings.TrimSpace(fields[2]) != "installed" {
			continue
		}
		inv[fields[0]] = fields[1]
	}
	return inv
}

// ParseFlatpak parses `flatpak list --app --columns=application,version`.
func ParseFlatpak(output string) Inventory {
	inv := make(Inventory)
	scanner := bufio.NewScanner(strings.NewReader(output))
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		fields := strings.Split(line, "\t")
		version := ""
		if len(fields) > 1 {
			version = strings.TrimSpace(fields[1])
		}
		inv[strings.TrimSpace(fields[0])] = version
	}
	return inv
}

// ParseSnap parses `snap list`, whose first line is a column header.
func ParseSnap(output string) Inventory {
	inv := make(Inventory)
	scanner := bufio.NewScanner(strings.NewReader(output))
	header := true
	for scanner.Scan() {
		fields := strings.Fields(scanner.Text())
		if len(fields) == 0 {
			continue
		}
		if header {
			header = false
			if fields[0] == "Name" {
				continue
			}
		}
		version := ""
		if len(fields) > 1 {
			version = fields[1]
		}
		inv[fields[0]] = version
	}
	return inv
}
