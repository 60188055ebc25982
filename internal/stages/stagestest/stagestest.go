// Package stagestest provides deterministic stage-result fixtures for tests.
package stagestest

import (
	"fmt"

	"github.com/KaramelBytes/tdfdash/internal/stages"
)

// Winners are the riders who take stage wins in Sample, in rotation.
var Winners = []string{"Pogačar", "Vingegaard", "Pogačar", "Cavendish", "Pogačar", "Vingegaard", "Philipsen"}

// StageIDs are the stages raced every year in Sample, in natural order.
var StageIDs = []string{"stage-1", "stage-2", "stage-3", "stage-4", "stage-5", "stage-6", "stage-7a", "stage-7b", "stage-8", "stage-9", "stage-10"}

// Sample returns a peloton of riders racing StageIDs in each of years.
// One rider abandons after each stage, ages and times vary per rider, and
// Winners rotate through the rank-1 spots.
func Sample(years ...int) []stages.Row {
	if len(years) == 0 {
		years = []int{2021, 2022, 2023}
	}
	const field = 20
	var rows []stages.Row
	win := 0
	for _, year := range years {
		riders := make([]string, field)
		for i := range riders {
			riders[i] = fmt.Sprintf("Rider %02d", i+1)
		}
		for s, stage := range StageIDs {
			winner := Winners[win%len(Winners)]
			win++
			starters := riders[:field-s]
			rank := 1
			rows = append(rows, stages.Row{
				Rider: winner, Rank: stages.Int(rank), Year: year, StageResultsID: stage,
				Elapsed: stages.Float(14400 + float64(s*60)), Age: stages.Float(26),
			})
			for i, rider := range starters {
				rank++
				rows = append(rows, stages.Row{
					Rider:          rider,
					Rank:           stages.Int(rank),
					Elapsed:        stages.Float(14400 + float64(s*60) + float64((i*37)%300) + float64(year-2020)),
					Age:            stages.Float(22 + float64(i%14)),
					Year:           year,
					StageResultsID: stage,
				})
			}
		}
	}
	return rows
}
