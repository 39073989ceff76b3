package wire

import (
	"encoding/binary"
	"fmt"

	"github.com/latticeworld/worldcore/internal/data"
	"github.com/latticeworld/worldcore/internal/vec"
)

// ChunkBlockCount is the number of block ids in one TerrainChunk payload
// (CHUNK_SIZE^3, spec.md §6: "RLE16 of 4096 block ids").
const ChunkBlockCount = vec.ChunkSize * vec.ChunkSize * vec.ChunkSize

// EncodeRLE16 run-length encodes a flat block array as a sequence of
// (count:u16, value:u16) pairs, little-endian — the format TerrainChunk
// carries on the wire. Runs never exceed ChunkBlockCount, so a count
// always fits in a u16.
func EncodeRLE16(blocks [ChunkBlockCount]data.BlockID) []byte {
	out := make([]byte, 0, 4)
	i := 0
	for i < len(blocks) {
		j := i + 1
		for j < len(blocks) && blocks[j] == blocks[i] {
			j++
		}
		var pair [4]byte
		binary.LittleEndian.PutUint16(pair[0:2], uint16(j-i))
		binary.LittleEndian.PutUint16(pair[2:4], uint16(blocks[i]))
		out = append(out, pair[:]...)
		i = j
	}
	return out
}

// DecodeRLE16 reverses EncodeRLE16, failing if the encoded run lengths
// don't sum to exactly ChunkBlockCount.
func DecodeRLE16(enc []byte) ([ChunkBlockCount]data.BlockID, error) {
	var blocks [ChunkBlockCount]data.BlockID
	if len(enc)%4 != 0 {
		return blocks, fmt.Errorf("rle16: encoded length %d not a multiple of 4", len(enc))
	}
	pos := 0
	for off := 0; off < len(enc); off += 4 {
		count := binary.LittleEndian.Uint16(enc[off : off+2])
		value := data.BlockID(binary.LittleEndian.Uint16(enc[off+2 : off+4]))
		if pos+int(count) > ChunkBlockCount {
			return blocks, fmt.Errorf("rle16: run overruns chunk at offset %d", off)
		}
		for k := 0; k < int(count); k++ {
			blocks[pos] = value
			pos++
		}
	}
	if pos != ChunkBlockCount {
		return blocks, fmt.Errorf("rle16: decoded %d blocks, want %d", pos, ChunkBlockCount)
	}
	return blocks, nil
}
