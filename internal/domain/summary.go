package domain

// Summary агрегирует прогон; форматированием занимается sink.
type Summary struct {
	Total      int                `json:"total"`
	Successful int                `json:"successful"`
	Failed     int                `json:"failed"`
	ByStatus   map[JoinStatus]int `json:"by_status"`
	Results    []JoinOutcome      `json:"results"`
}

func Summarize(results []JoinOutcome) Summary {
	s := Summary{
		Total:    len(results),
		ByStatus: make(map[JoinStatus]int, len(Statuses)),
		Results:  make([]JoinOutcome, len(results)),
	}
	copy(s.Results, results)

	for _, o := range results {
		s.ByStatus[o.Status]++
		if o.Status.IsMember() {
			s.Successful++
		} else {
			s.Failed++
		}
	}
	return s
}
