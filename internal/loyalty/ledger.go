package loyalty

// Apply adds delta to the running balance. Only earnings raise lifetime points.
func Apply(c *Customer, delta int64) {
	c.CurrentPoints += delta
	if delta > 0 {
		c.LifetimePoints += delta
	}
}

// Reverse undoes a previous Apply of points.
func Reverse(c *Customer, points int64) {
	c.CurrentPoints -= points
	if points > 0 {
		c.LifetimePoints -= points
	}
}

// Replace moves a transaction's effect from oldPoints to newPoints.
func Replace(c *Customer, oldPoints, newPoints int64) {
	if oldPoints == newPoints {
		return
	}
	Reverse(c, oldPoints)
	Apply(c, newPoints)
}
