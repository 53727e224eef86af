/*
   MGTDrive - SAM Coupé / +D disk image tool and floppy emulator
   Copyright (c) 2022, The MGTDrive Authors

   This file is part of MGTDrive.

   MGTDrive is free software: you can redistribute it and/or modify
   it under the terms of the GNU General Public License as published by
   the Free Software Foundation, either version 3 of the License, or
   (at your option) any later version.

   MGTDrive is distributed in the hope that it will be useful,
   but WITHOUT ANY WARRANTY; without even the implied warranty of
   MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
   GNU General Public License for more details.

   You should have received a copy of the GNU General Public License
   along with MGTDrive. If not, see <http://www.gnu.org/licenses/>.
*/

package dos

import (
	"testing"
	"time"
)

//
func TestCodeFileSynthesis(t *testing.T) {

	data := testPayload(1000)
	f := FromCodeBytes(data, "verylongfilename", 0x8000, nil)

	if f.Name != "verylongfi" {
		t.Errorf("name %q not clipped to 10 characters", f.Name)
	}
	if f.Length != 1000 || f.Start != 0x8000 {
		t.Errorf("start/length %d/%d, want %d/%d", f.Start, f.Length, 0x8000, 1000)
	}

	want := (1000 + codeHeaderLen + 509) / 510
	if f.Sectors != want {
		t.Errorf("sectors %d, want %d", f.Sectors, want)
	}
	if len(f.Data)%510 != 0 {
		t.Errorf("data length %d not padded to payload size", len(f.Data))
	}

	// data header: type, length, start, spread over triples
	if f.Data[0] != byte(TypeCode) {
		t.Errorf("data header type %d, want %d", f.Data[0], TypeCode)
	}
}

//
func TestEntryRoundTrip(t *testing.T) {

	when := time.Date(2021, 7, 15, 13, 45, 0, 0, time.UTC)
	exec := 0x9000

	f := FromCodeBytes(testPayload(1500), "probe", 0x8000, &exec)
	f.Hidden = true
	f.Protected = true
	f.Time = &when

	addrs := []Address{
		{Track: 4, Sector: 1}, {Track: 4, Sector: 2},
		{Track: 4, Sector: 3}}

	entry, err := f.Encode(addrs, 10, TimeBDOS)
	if err != nil {
		t.Fatalf("encode failed: %v", err)
	}

	got, err := DecodeEntry(entry)
	if err != nil {
		t.Fatalf("decode failed: %v", err)
	}

	if got.Type != TypeCode || got.Name != "probe" {
		t.Errorf("decoded %s %q", got.Type, got.Name)
	}
	if !got.Hidden || !got.Protected {
		t.Error("hidden/protected flags lost")
	}
	if got.Start != 0x8000 || got.Length != 1500 {
		t.Errorf("start/length %d/%d, want 32768/1500", got.Start, got.Length)
	}
	if got.Execute == nil || *got.Execute != exec {
		t.Errorf("execute %v, want %d", got.Execute, exec)
	}
	if got.StartTrack != 4 || got.StartSector != 1 {
		t.Errorf("start position %d/%d, want 4/1",
			got.StartTrack, got.StartSector)
	}
	if got.Sectors != len(addrs) {
		t.Errorf("sectors %d, want %d", got.Sectors, len(addrs))
	}
	if got.Time == nil || !got.Time.Equal(when) {
		t.Errorf("time %v, want %v", got.Time, when)
	}
}

//
func TestDecodeUnusedSlot(t *testing.T) {

	f, err := DecodeEntry(make([]byte, EntrySize))
	if err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	if f.Type != TypeNone || f.Name != "" {
		t.Errorf("empty entry decoded as %s %q", f.Type, f.Name)
	}

	// an erased slot keeps its name
	erased := make([]byte, EntrySize)
	copy(erased[1:], "gone      ")
	f, err = DecodeEntry(erased)
	if err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	if f.Type != TypeNone || f.Name != "gone" {
		t.Errorf("erased entry decoded as %s %q", f.Type, f.Name)
	}
}

//
func TestTripleCodecs(t *testing.T) {

	var addrs = []int{0x4000, 0x8000, 0x9c40, 0xffff, 0x13000}
	for _, addr := range addrs {
		if got := tripleToAddr(addrToTriple(addr)); got != addr {
			t.Errorf("address %#x round trips to %#x", addr, got)
		}
	}

	var lengths = []int{0, 1, 0x3fff, 0x4000, 123456}
	for _, length := range lengths {
		if got := tripleToLen(lenToTriple(length)); got != length {
			t.Errorf("length %d round trips to %d", length, got)
		}
	}

	if got := tripleToExec(execToTriple(nil)); got != nil {
		t.Errorf("nil execute round trips to %v", got)
	}
	exec := 0x8123
	if got := tripleToExec(execToTriple(&exec)); got == nil || *got != exec {
		t.Errorf("execute %#x round trips to %v", exec, got)
	}

	line := 100
	enc, err := lineToTriple(&line)
	if err != nil {
		t.Fatalf("line encode failed: %v", err)
	}
	if got := tripleToLine(enc); got == nil || *got != line {
		t.Errorf("line %d round trips to %v", line, got)
	}

	bad := 0xff00
	if _, err := lineToTriple(&bad); err == nil {
		t.Error("out-of-range line accepted")
	}
}

//
func TestTimestampRoundTrip(t *testing.T) {

	var tests = []struct {
		name   string
		format TimeFormat
		when   time.Time
	}{
		{"masterdos", TimeMasterDOS,
			time.Date(2021, 3, 9, 17, 30, 0, 0, time.UTC)},
		{"bdos", TimeBDOS,
			time.Date(1999, 12, 31, 23, 59, 0, 0, time.UTC)},
		{"bdos17", TimeBDOS17,
			time.Date(2005, 6, 1, 8, 15, 42, 0, time.UTC)},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			got := UnpackTime(PackTime(&test.when, test.format))
			if got == nil || !got.Equal(test.when) {
				t.Errorf("round trip gives %v, want %v", got, test.when)
			}
		})
	}
}

//
func TestTimestampDegradesToNone(t *testing.T) {

	var tests = []struct {
		name string
		data []byte
	}{
		{"cleared", []byte{0xff, 0, 0, 0, 0}},
		{"bad-day", []byte{32, 1, 99, 10, 30}},
		{"bad-month", []byte{1, 13, 99, 10, 30}},
		{"bad-hour", []byte{1, 1, 99, 25, 30}},
		{"short", []byte{1, 1}},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			if got := UnpackTime(test.data); got != nil {
				t.Errorf("invalid timestamp decoded to %v", got)
			}
		})
	}
}

//
func TestPackTimeNil(t *testing.T) {
	for _, b := range PackTime(nil, TimeBDOS) {
		if b != 0 {
			t.Fatal("nil time not packed as zeroes")
		}
	}
}
