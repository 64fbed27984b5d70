package main

import (
	"log"

	"mcbot-pathing/pathing"
)

// MergeWorlds combines several block regions into one. Blocks present in more
// than one region are kept once; overlapping cost zones keep the highest
// multiplier.
func MergeWorlds(worlds []VoxelWorld) VoxelWorld {
	if len(worlds) == 1 {
		return worlds[0]
	}

	merged := VoxelWorld{}
	solid := make(map[pathing.Vector3i]struct{})
	zoneIdx := make(map[pathing.Vector3i]int)
	total := 0

	for _, world := range worlds {
		total += len(world.Solid)
		for _, p := range world.Solid {
			if _, exists := solid[p]; exists {
				continue
			}
			solid[p] = struct{}{}
			merged.Solid = append(merged.Solid, p)
		}

		for _, zone := range world.CostZones {
			if i, exists := zoneIdx[zone.Position]; exists {
				if zone.Multiplier > merged.CostZones[i].Multiplier {
					merged.CostZones[i].Multiplier = zone.Multiplier
				}
				continue
			}
			zoneIdx[zone.Position] = len(merged.CostZones)
			merged.CostZones = append(merged.CostZones, zone)
		}
	}

	log.Printf("   Blocks after merging %d worlds: %d (removed %d duplicates)\n",
		len(worlds), len(merged.Solid), total-len(merged.Solid))

	return merged
}
