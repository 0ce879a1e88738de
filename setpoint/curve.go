package setpoint

import (
	"sort"

	"github.com/sgostarter/i/l"
)

type entry struct {
	bucket int
	p      Point
}

// Curve is the piecewise-constant setpoint function: an insertion-ordered map from time bucket to Point.
// Every public mutation leaves it normalized and clean, so Flatten can be called at any time.
type Curve struct {
	logger l.Wrapper
	axes   AxisProvider

	entries []entry
}

// NewCurve seeds a curve from points; no points means DefaultPoints.
func NewCurve(axes AxisProvider, points []Point, options ...Option) *Curve {
	opts := optionNew(options...)

	if axes == nil {
		axes = DefaultAxes()
	}

	c := &Curve{
		logger: opts.logger.WithFields(l.StringField(l.ClsKey, "Curve")),
		axes:   axes,
	}

	c.Reset(points)

	return c
}

// Reset replaces every point, then normalizes and cleans.
func (c *Curve) Reset(points []Point) {
	if len(points) == 0 {
		points = DefaultPoints()
	}

	timeAxis := c.axes.Axis(AxisTime)

	c.entries = make([]entry, 0, len(points))

	for _, p := range points {
		c.entries = append(c.entries, entry{bucket: timeAxis.Bucket(p.Time), p: p})
	}

	c.Refresh()
}

func (c *Curve) indexOf(bucket int) int {
	for idx, e := range c.entries {
		if e.bucket == bucket {
			return idx
		}
	}

	return -1
}

// Toggle removes the point stored at the time bucket of t, or inserts (t, temperature) when the bucket is free.
func (c *Curve) Toggle(t, temperature float64) (r ToggleResult) {
	bucket := c.axes.Axis(AxisTime).Bucket(t)

	if idx := c.indexOf(bucket); idx >= 0 {
		if len(c.entries) == 1 {
			return ToggleKept
		}

		c.entries = append(c.entries[:idx], c.entries[idx+1:]...)
		r = ToggleRemoved
	} else {
		c.entries = append(c.entries, entry{bucket: bucket, p: Point{Time: t, Temperature: temperature}})
		r = ToggleInserted
	}

	c.Refresh()

	return
}

// Refresh moves a just-mutated curve back to the clean state.
func (c *Curve) Refresh() {
	c.Normalize()
	c.Clean()
}

// Normalize re-derives every bucket from the current time axis and restores ascending time order.
//
// Collision rule: the earliest point (the head) always keeps its bucket; in every other bucket the latest point
// by time wins (on equal times the one inserted last). The minimum and maximum time points therefore survive.
func (c *Curve) Normalize() {
	if len(c.entries) == 0 {
		return
	}

	sorted := make([]entry, len(c.entries))
	copy(sorted, c.entries)

	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].p.Time < sorted[j].p.Time
	})

	timeAxis := c.axes.Axis(AxisTime)

	head := sorted[0]
	head.bucket = timeAxis.Bucket(head.p.Time)

	entries := make([]entry, 0, len(sorted))
	entries = append(entries, head)

	indexes := make(map[int]int, len(sorted))
	indexes[head.bucket] = 0

	for _, e := range sorted[1:] {
		e.bucket = timeAxis.Bucket(e.p.Time)

		idx, ok := indexes[e.bucket]
		if !ok {
			indexes[e.bucket] = len(entries)
			entries = append(entries, e)

			continue
		}

		if idx == 0 {
			c.logger.WithFields(l.IntField("bucket", e.bucket)).Debug("normalize: head keeps its bucket")

			continue
		}

		c.logger.WithFields(l.IntField("bucket", e.bucket)).Debug("normalize: later point replaces colliding point")

		entries[idx] = e
	}

	c.entries = entries
}

// Clean drops points that stay on the temperature plateau of their predecessor. The minimum and maximum time
// buckets always survive.
func (c *Curve) Clean() {
	if len(c.entries) < 2 {
		return
	}

	kMin, kMax := c.entries[0].bucket, c.entries[0].bucket

	for _, e := range c.entries[1:] {
		if e.bucket < kMin {
			kMin = e.bucket
		}

		if e.bucket > kMax {
			kMax = e.bucket
		}
	}

	temperatureAxis := c.axes.Axis(AxisTemperature)

	deletes := make(map[int]struct{})
	prev := temperatureAxis.Bucket(c.entries[0].p.Temperature)

	for _, e := range c.entries[1:] {
		cur := temperatureAxis.Bucket(e.p.Temperature)
		if cur == prev {
			deletes[e.bucket] = struct{}{}
		}

		if e.bucket == kMax {
			continue
		}

		prev = cur
	}

	if len(deletes) == 0 {
		return
	}

	entries := c.entries[:0]

	for _, e := range c.entries {
		if _, ok := deletes[e.bucket]; ok && e.bucket != kMin && e.bucket != kMax {
			continue
		}

		entries = append(entries, e)
	}

	c.entries = entries
}

// RescaleTemperatureBounds clamps every temperature into [newMin, newMax].
func (c *Curve) RescaleTemperatureBounds(newMin, newMax float64) {
	for idx := range c.entries {
		if c.entries[idx].p.Temperature > newMax {
			c.entries[idx].p.Temperature = newMax
		}

		if c.entries[idx].p.Temperature < newMin {
			c.entries[idx].p.Temperature = newMin
		}
	}

	c.Refresh()
}

// Flatten expands the curve into 2n-1 staircase vertices: every step is drawn horizontally at the old
// temperature, then vertically to the new one.
func (c *Curve) Flatten() []PlotPoint {
	if len(c.entries) == 0 {
		return nil
	}

	pps := make([]PlotPoint, 0, 2*len(c.entries)-1)
	pps = append(pps, PlotPoint{X: c.entries[0].p.Time, Y: c.entries[0].p.Temperature})

	for idx := 1; idx < len(c.entries); idx++ {
		prev, cur := c.entries[idx-1].p, c.entries[idx].p

		pps = append(pps, PlotPoint{X: cur.Time, Y: prev.Temperature}, PlotPoint{X: cur.Time, Y: cur.Temperature})
	}

	return pps
}

func (c *Curve) Len() int {
	return len(c.entries)
}

func (c *Curve) Points() []Point {
	ps := make([]Point, len(c.entries))

	for idx, e := range c.entries {
		ps[idx] = e.p
	}

	return ps
}

func (c *Curve) Buckets() []int {
	bs := make([]int, len(c.entries))

	for idx, e := range c.entries {
		bs[idx] = e.bucket
	}

	return bs
}

func (c *Curve) Has(bucket int) bool {
	return c.indexOf(bucket) >= 0
}

func (c *Curve) Axes() AxisProvider {
	return c.axes
}

func (c *Curve) Clone() *Curve {
	entries := make([]entry, len(c.entries))
	copy(entries, c.entries)

	return &Curve{
		logger:  c.logger,
		axes:    c.axes,
		entries: entries,
	}
}
