package container

import (
	"fmt"
	"sort"
)

// ChunkSize is the edge length in tiles of a WorldBox map chunk.
const ChunkSize = 64

// Keys of the WorldBox layout.
const (
	keyTileMap     = "tileMap"
	keyTileArray   = "tileArray"
	keyTileAmounts = "tileAmounts"
	keyWorldLaws   = "worldLaws"
	keyLawList     = "list"
	keyFrozenTiles = "frozen_tiles"
)

// SizeError is returned when a map can't be divided into whole chunks.
type SizeError struct {
	Width, Height int
	Chunk         int
}

func (e *SizeError) Error() string {
	return fmt.Sprintf("container: %dx%d map is not a multiple of %d tiles", e.Width, e.Height, e.Chunk)
}

func checkChunks(width, height, chunk int) error {
	if chunk < 1 || width%chunk != 0 || height%chunk != 0 {
		return &SizeError{Width: width, Height: height, Chunk: chunk}
	}
	return nil
}

// CheckChunks returns a *SizeError unless width and height are both multiples
// of ChunkSize.
func CheckChunks(width, height int) error {
	return checkChunks(width, height, ChunkSize)
}

// lawEntry omits boolVal for enabled laws, the game defaults it to true.
type lawEntry struct {
	Name    string `json:"name"`
	BoolVal *bool  `json:"boolVal,omitempty"`
}

// terrainIndex extends the template tile map with every terrain in d, in the
// order the rows are written.
func terrainIndex(d *Document, existing interface{}) ([]interface{}, map[string]int) {
	var names []interface{}
	index := make(map[string]int)

	if l, ok := existing.([]interface{}); ok {
		names = append(names, l...)
		for i, v := range l {
			if s, ok := v.(string); ok {
				if _, ok := index[s]; !ok {
					index[s] = i
				}
			}
		}
	}

	for y := d.Height - 1; y >= 0; y-- {
		for _, t := range d.Tiles[y*d.Width : (y+1)*d.Width] {
			if _, ok := index[t.Terrain]; !ok {
				index[t.Terrain] = len(names)
				names = append(names, t.Terrain)
			}
		}
	}

	return names, index
}

// worldLaws merges the document laws into any list the template carries,
// replacing entries with the same name.
func worldLaws(d *Document, existing interface{}) map[string]interface{} {
	m := make(map[string]interface{})
	var list []interface{}

	if wl, ok := existing.(map[string]interface{}); ok {
		for k, v := range wl {
			m[k] = v
		}
		if l, ok := wl[keyLawList].([]interface{}); ok {
			for _, v := range l {
				if e, ok := v.(map[string]interface{}); ok {
					if name, ok := e["name"].(string); ok {
						if _, ok := d.Laws[name]; ok {
							continue
						}
					}
				}
				list = append(list, v)
			}
		}
	}

	names := make([]string, 0, len(d.Laws))
	for k := range d.Laws {
		names = append(names, k)
	}
	sort.Strings(names)
	off := false
	for _, name := range names {
		e := lawEntry{Name: name}
		if !d.Laws[name] {
			e.BoolVal = &off
		}
		list = append(list, e)
	}

	if list == nil {
		list = []interface{}{}
	}
	m[keyLawList] = list

	return m
}

func marshalWorldBox(d *Document, chunk int) ([]byte, error) {
	if err := checkChunks(d.Width, d.Height, chunk); err != nil {
		return nil, err
	}

	m := make(map[string]interface{}, len(d.Template)+6)
	for k, v := range d.Template {
		m[k] = v
	}

	names, index := terrainIndex(d, d.Template[keyTileMap])

	// Rows are written bottom-up, each run-length encoded
	tileArray := make([][]int, 0, d.Height)
	tileAmounts := make([][]int, 0, d.Height)
	for y := d.Height - 1; y >= 0; y-- {
		var ids, amounts []int
		for _, t := range d.Tiles[y*d.Width : (y+1)*d.Width] {
			id := index[t.Terrain]
			if n := len(ids); n > 0 && ids[n-1] == id {
				amounts[n-1]++
				continue
			}
			ids = append(ids, id)
			amounts = append(amounts, 1)
		}
		tileArray = append(tileArray, ids)
		tileAmounts = append(tileAmounts, amounts)
	}

	var frozen []int
	for i, t := range d.Tiles {
		if t.Frozen {
			frozen = append(frozen, i)
		}
	}

	m[KeyWidth] = d.Width / chunk
	m[KeyHeight] = d.Height / chunk
	m[keyTileMap] = names
	m[keyTileArray] = tileArray
	m[keyTileAmounts] = tileAmounts
	m[keyWorldLaws] = worldLaws(d, d.Template[keyWorldLaws])
	if len(frozen) > 0 {
		m[keyFrozenTiles] = frozen
	} else {
		delete(m, keyFrozenTiles)
	}

	return marshalJSON(m)
}
