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

package cdimage_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/redcrab/gostation/cdimage"
	"github.com/redcrab/gostation/hardware/cdrom"
	"github.com/redcrab/gostation/test"
)

func writeImage(t *testing.T, sectors int) string {
	t.Helper()

	data := make([]byte, sectors*cdrom.SectorSize)
	for i := 0; i < sectors; i++ {
		data[i*cdrom.SectorSize] = byte(i + 1)
	}

	path := filepath.Join(t.TempDir(), "disc.bin")
	if err := os.WriteFile(path, data, 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestOpenAndRead(t *testing.T) {
	img, err := cdimage.Open(writeImage(t, 3))
	test.ExpectSuccess(t, err)
	defer img.Close()

	test.ExpectEquality(t, img.Sectors(), 3)

	sec, err := img.ReadSector(2)
	test.ExpectSuccess(t, err)
	test.ExpectEquality(t, len(sec), cdrom.SectorSize)
	test.ExpectEquality(t, sec[0], 3)
}

func TestReadBeyondEnd(t *testing.T) {
	img, err := cdimage.Open(writeImage(t, 2))
	test.ExpectSuccess(t, err)
	defer img.Close()

	_, err = img.ReadSector(2)
	test.ExpectFailure(t, err)
}

func TestOpenPartialSector(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.bin")
	if err := os.WriteFile(path, make([]byte, 100), 0644); err != nil {
		t.Fatal(err)
	}

	_, err := cdimage.Open(path)
	test.ExpectFailure(t, err)
}

func TestOpenMissingFile(t *testing.T) {
	_, err := cdimage.Open(filepath.Join(t.TempDir(), "nope.bin"))
	test.ExpectFailure(t, err)
}
