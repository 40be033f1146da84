package platform

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const ubuntuRelease = `PRETTY_NAME="Ubuntu 24.04.1 LTS"
NAME="Ubuntu"
VERSION_ID="24.04"
VERSION="24.04.1 LTS (Noble Numbat)"
VERSION_CODENAME=noble
ID=ubuntu
ID_LIKE=debian
HOME_URL="https://www.ubuntu.com/"
UBUNTU_CODENAME=noble
`

const mintRelease = `NAME="Linux Mint"
VERSION="21.3 (Virginia)"
ID=linuxmint
ID_LIKE="ubuntu debian"
PRETTY_NAME="Linux Mint 21.3"
VERSION_ID="21.3"
UBUNTU_CODENAME=jammy
`

func TestParse_Ubuntu(t *testing.T) {
	info, err := Parse([]byte(ubuntuRelease))
	require.NoError(t, err)

	assert.Equal(t, "ubuntu", info.ID)
	assert.Equal(t, "24.04", info.VersionID)
	assert.Equal(t, "noble", info.Codename)
	assert.Equal(t, "Ubuntu 24.04.1 LTS", info.PrettyName)
	assert.Equal(t, []string{"debian"}, info.IDLike)
	assert.True(t, info.IsDebianLike())
}

func TestParse_FallsBackToUbuntuCodename(t *testing.T) {
	info, err := Parse([]byte(mintRelease))
	require.NoError(t, err)

	assert.Equal(t, "linuxmint", info.ID)
	assert.Equal(t, "jammy", info.Codename)
	assert.Equal(t, []string{"ubuntu", "debian"}, info.IDLike)
	assert.True(t, info.IsDebianLike())
}

func TestParse_NotDebian(t *testing.T) {
	info, err := Parse([]byte("ID=fedora\nVERSION_ID=40\n"))
	require.NoError(t, err)
	assert.False(t, info.IsDebianLike())
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "os-release")
	require.NoError(t, os.WriteFile(path, []byte(ubuntuRelease), 0644))

	info, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "noble", info.Codename)

	_, err = Load(filepath.Join(t.TempDir(), "missing"))
	assert.Error(t, err)
}

func TestDebianArch(t *testing.T) {
	assert.Equal(t, "amd64", DebianArch("amd64"))
	assert.Equal(t, "arm64", DebianArch("arm64"))
	assert.Equal(t, "armhf", DebianArch("arm"))
	assert.Equal(t, "i386", DebianArch("386"))
}
