// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package ytlink

import "github.com/sigurn/crc16"

// CRC-16/CCITT-FALSE: poly 0x1021, init 0xFFFF, no reflection, no final xor.
var crcTable = crc16.MakeTable(crc16.CRC16_CCITT_FALSE)

// CRCUpdate folds one byte into a running CRC-16-CCITT state.
// When first is true the state is reset to 0xFFFF before folding.
func CRCUpdate(state uint16, b byte, first bool) uint16 {
	if first {
		state = crcInitial
	}
	return crc16.Update(state, []byte{b}, crcTable)
}

// CalculateCRC computes CRC-16-CCITT checksum for the given data
func CalculateCRC(data []byte) uint16 {
	return crc16.Complete(crc16.Update(crc16.Init(crcTable), data, crcTable), crcTable)
}

// lengthCRC returns the CRC over the 3-byte big-endian length field.
func lengthCRC(n int) uint16 {
	return CalculateCRC([]byte{byte(n >> 16), byte(n >> 8), byte(n)})
}
