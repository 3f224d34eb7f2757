// This file is part of GoStation.
//
// GoStation is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// GoStation is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with GoStation.  If not, see <https://www.gnu.org/licenses/>.

// Package biosloader loads a BIOS ROM image from the filesystem and tries
// to identify it against a table of known dumps. An unknown image of the
// right size is accepted with a log entry; plenty of region variants exist
// and most of them boot fine.
package biosloader

import (
	"crypto/md5"
	"crypto/sha1"
	"fmt"
	"os"

	"github.com/redcrab/gostation/hardware/memory"
	"github.com/redcrab/gostation/logger"
)

// knownBIOS maps the MD5 digest of a dump to its model name.
var knownBIOS = map[[md5.Size]byte]string{
	{0x92, 0x4e, 0x39, 0x2e, 0xd0, 0x55, 0x58, 0xff,
		0xdb, 0x11, 0x54, 0x08, 0xc2, 0x63, 0xdc, 0xcf}: "SCPH-1001 (North America)",
	{0x8d, 0xd7, 0xd5, 0x29, 0x6a, 0x65, 0x0f, 0xac,
		0x73, 0x19, 0xbc, 0xe6, 0x65, 0xa6, 0xa5, 0x3c}: "SCPH-5500 (Japan)",
	{0x32, 0x73, 0x6f, 0x17, 0x08, 0x7c, 0xca, 0xb2,
		0xf0, 0xcf, 0x26, 0xc9, 0x5e, 0xe7, 0xac, 0x26}: "SCPH-5502 (Europe)",
}

// Load reads a BIOS image from the given path. The image must be exactly
// the size of the BIOS ROM.
func Load(path string) (*memory.BIOS, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("biosloader: %w", err)
	}

	bios, err := memory.NewBIOS(data)
	if err != nil {
		return nil, fmt.Errorf("biosloader: %s: %w", path, err)
	}

	digest := md5.Sum(data)
	if name, ok := knownBIOS[digest]; ok {
		logger.Logf("bios", "loaded %s", name)
	} else {
		logger.Logf("bios", "unrecognised BIOS (md5 %x, sha1 %x)", digest, sha1.Sum(data))
	}

	return bios, nil
}
