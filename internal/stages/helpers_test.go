package stages

// finish builds a row with a rank and elapsed time.
func finish(rider string, year int, stage string, rank int, elapsed float64) Row {
	return Row{Rider: rider, Year: year, StageResultsID: stage, Rank: Int(rank), Elapsed: Float(elapsed)}
}

// stageField builds n riders finishing one stage.
func stageField(year int, stage string, n int) []Row {
	rows := make([]Row, n)
	for i := range rows {
		rows[i] = Row{Rider: riderName(i), Year: year, StageResultsID: stage, Rank: Int(i + 1)}
	}
	return rows
}

func riderName(i int) string {
	const letters = "abcdefghijklmnopqrstuvwxyz"
	return "rider-" + string(letters[i%26]) + string(letters[(i/26)%26]) + string(letters[(i/676)%26])
}
