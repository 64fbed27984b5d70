package main

import (
	"encoding/json"
	"log"
	"os"
	"path/filepath"
)

// loadWorldsFromDir loads all voxel world JSON files from dir
func loadWorldsFromDir(dir string) ([]VoxelWorld, error) {
	var worlds []VoxelWorld

	files, err := filepath.Glob(filepath.Join(dir, "*.json"))
	if err != nil {
		return nil, err
	}

	log.Printf("Loading voxel worlds from %d JSON files...\n", len(files))

	for _, file := range files {
		data, err := os.ReadFile(file)
		if err != nil {
			log.Printf("⚠️  Failed to read %s: %v\n", file, err)
			continue
		}

		var world VoxelWorld
		if err := json.Unmarshal(data, &world); err != nil {
			log.Printf("⚠️  Failed to parse %s: %v\n", file, err)
			continue
		}

		worlds = append(worlds, world)
		log.Printf("   ✅ Loaded %d blocks from %s\n", len(world.Solid), filepath.Base(file))
	}

	return worlds, nil
}
