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
	"time"
)

// TimeFormat selects which of the legacy 5-byte timestamp layouts to
// write. Decoding tells the layouts apart on its own, encoding cannot,
// so the format is an explicit choice of the caller.
type TimeFormat int

//
const (
	// day, month, 2-digit year, hour, minute
	TimeMasterDOS TimeFormat = iota
	// day, month, year-1900, hour, minute
	TimeBDOS
	// packed layout introduced with BDOS 1.7a, carries seconds
	TimeBDOS17
)

// PackTime encodes a timestamp into the 5-byte directory field. A nil
// time encodes as all zeroes.
func PackTime(t *time.Time, format TimeFormat) []byte {

	if t == nil {
		return make([]byte, 5)
	}

	day, month, year := t.Day(), int(t.Month()), t.Year()
	hour, minute, sec := t.Hour(), t.Minute(), t.Second()

	switch format {

	case TimeMasterDOS:
		return []byte{
			byte(day), byte(month), byte(year % 100), byte(hour), byte(minute)}

	case TimeBDOS17:
		return []byte{
			byte(day),
			byte(0x80 | (month << 3)),
			byte(year - 1900),
			byte((hour << 3) | (minute & 7)),
			byte(((minute & 0x38) << 2) | (sec >> 1)),
		}

	default:
		return []byte{
			byte(day), byte(month), byte(year - 1900), byte(hour), byte(minute)}
	}
}

// UnpackTime decodes a 5-byte directory timestamp, working out which
// layout produced it. Anything that does not decode to a plausible
// date yields nil; timestamps are cosmetic and never fail a decode.
func UnpackTime(data []byte) *time.Time {

	if len(data) < 5 || data[0] == 0xff {
		return nil
	}

	var year, month, day, hour, minute, sec int

	if data[1]&0x80 != 0 { // BDOS 1.7a layout
		year, month, day = int(data[2]), int(data[1]&0x78)>>3, int(data[0])
		hour = int(data[3]&0xf8) >> 3
		minute = int((data[4]&0xe0)>>2) | int(data[3]&0x07)
		sec = int(data[4]&0x1f) << 1
	} else {
		year, month, day = int(data[2]), int(data[1]), int(data[0])
		hour, minute = int(data[3]), int(data[4])
	}

	year += 1900
	if year < 1980 {
		year += 100
	}

	t := time.Date(year, time.Month(month), day, hour, minute, sec, 0, time.UTC)
	if t.Year() != year || int(t.Month()) != month || t.Day() != day ||
		t.Hour() != hour || t.Minute() != minute || t.Second() != sec {
		// time.Date normalizes out-of-range fields, so a changed
		// component means the raw values were not a real date
		return nil
	}

	return &t
}
