package world

// cellOffset is a cell displacement relative to a disk center.
type cellOffset struct {
	du, dv int32
}

// diskCache memoizes the relative coordinates of Chebyshev disks. Rules
// reuse a handful of radii every tick, so the rings are computed once.
var diskCache = map[uint32][]cellOffset{}

func chebyshevDisk(radius uint32) []cellOffset {
	if disk, ok := diskCache[radius]; ok {
		return disk
	}
	r := int32(radius)
	disk := make([]cellOffset, 0, (2*r+1)*(2*r+1))
	for dv := -r; dv <= r; dv++ {
		for du := -r; du <= r; du++ {
			disk = append(disk, cellOffset{du, dv})
		}
	}
	diskCache[radius] = disk
	return disk
}
