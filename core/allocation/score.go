package allocation

// Scores holds the fairness metrics of a schedule.
type Scores struct {
	Usage         []int
	MinUsageTime  int
	AverageUsage  float64
	FairnessScore float64
}

// Score reduces an in-service matrix (devices × slots) to fairness metrics:
// the worst served device's in-service slot count, the mean fraction of slots
// devices are in service, and their sum. An empty matrix scores zero.
func Score(inService [][]bool) Scores {
	s := Scores{Usage: make([]int, len(inService))}
	if len(inService) == 0 || len(inService[0]) == 0 {
		return s
	}
	total := 0
	for i, row := range inService {
		for _, u := range row {
			if u {
				s.Usage[i]++
			}
		}
		total += s.Usage[i]
		if i == 0 || s.Usage[i] < s.MinUsageTime {
			s.MinUsageTime = s.Usage[i]
		}
	}
	s.AverageUsage = float64(total) / float64(len(inService)*len(inService[0]))
	s.FairnessScore = float64(s.MinUsageTime) + s.AverageUsage
	return s
}
