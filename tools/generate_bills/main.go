// Package main generates a large bill file for performance testing.
//
// Usage:
//
//	go run main.go > large.txt
//	go run main.go 1048576 > 1mb.txt  # target size in bytes
package main

import (
	"fmt"
	"math/rand"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/robinvdvleuten/billtext/config"
)

const defaultTargetSize = 10 * 1024 * 1024 // 10MB

var (
	descriptions = []string{
		"noodles", "coffee", "bus ticket", "groceries", "rent",
		"electricity", "water", "taxi", "train", "sandwich",
		"books", "shoes", "phone plan", "cinema", "bakery",
	}

	comments = []string{
		"with Bob", "split with flatmates", "paid by card",
		"receipt lost", "discounted", "weekly",
	}

	remarks = []string{
		"regular month", "holiday", "moved flat", "business trip", "quiet month",
	}
)

func main() {
	targetSize := defaultTargetSize
	if len(os.Args) > 1 {
		if size, err := strconv.Atoi(os.Args[1]); err == nil {
			targetSize = size
		}
	}

	categories := config.Default().Categories

	period := time.Date(2000, 1, 1, 0, 0, 0, 0, time.UTC)
	bytesWritten := 0
	sections := 0
	entries := 0

	for bytesWritten < targetSize {
		output, n := generateSection(period, categories)
		fmt.Print(output)
		bytesWritten += len(output)
		entries += n
		sections++
		period = period.AddDate(0, 1, 0)
	}

	fmt.Fprintf(os.Stderr, "\nGenerated %d bytes with %d sections and %d entries\n", bytesWritten, sections, entries)
}

func generateSection(period time.Time, categories []config.Category) (string, int) {
	var sb strings.Builder
	entries := 0

	fmt.Fprintf(&sb, "date:%s\n", period.Format("200601"))
	if rand.Intn(3) == 0 {
		fmt.Fprintf(&sb, "remark:%s\n", remarks[rand.Intn(len(remarks))])
	}

	for _, category := range categories {
		// Skip some parents so sections vary in shape
		if rand.Intn(4) == 0 {
			continue
		}
		fmt.Fprintf(&sb, "%s\n", category.ParentItem)

		for _, child := range category.SubItems {
			if rand.Intn(3) == 0 {
				continue
			}
			fmt.Fprintf(&sb, "%s\n", child)

			count := rand.Intn(8) + 1
			for i := 0; i < count; i++ {
				sb.WriteString(generateContentLine())
				entries++
			}
		}
		sb.WriteString("\n")
	}

	return sb.String(), entries
}

func generateContentLine() string {
	description := descriptions[rand.Intn(len(descriptions))]

	line := fmt.Sprintf("%s %s", generateExpression(), description)
	if rand.Intn(4) == 0 {
		line += " // " + comments[rand.Intn(len(comments))]
	}
	return line + "\n"
}

func generateExpression() string {
	switch rand.Intn(6) {
	case 0: // multiplication
		return fmt.Sprintf("%s*%d", randAmount(1, 50), rand.Intn(4)+2)
	case 1: // unicode multiplication sign
		return fmt.Sprintf("%s×%d", randAmount(1, 50), rand.Intn(4)+2)
	case 2: // sum of parts
		return fmt.Sprintf("%s+%s", randAmount(1, 100), randAmount(1, 100))
	case 3: // refund
		return fmt.Sprintf("%s-%s", randAmount(50, 200), randAmount(1, 49))
	default:
		return randAmount(1, 500)
	}
}

func randAmount(lo, hi int) string {
	whole := lo + rand.Intn(hi-lo+1)
	if rand.Intn(2) == 0 {
		return strconv.Itoa(whole)
	}
	return fmt.Sprintf("%d.%02d", whole, rand.Intn(100))
}
