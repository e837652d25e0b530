package service

import (
	"fmt"
	"strings"
	"time"

	"github.com/arturoeanton/go-novelty-analyzer-ollama/internal/domain"
)

const maxSuggestions = 4

// buildSuggestions produces up to four ordered hints from a scored analysis
// and its ranked matches. Deterministic for a fixed clock year.
func buildSuggestions(analysis *domain.IdeaAnalysis, matches []domain.IdeaMatch) []string {
	var list []string
	currentYear := time.Now().UTC().Year()

	// Time-based: how fresh is the closest prior work?
	if len(matches) > 0 && matches[0].Year != nil {
		age := currentYear - *matches[0].Year
		if age >= 5 {
			list = append(list, fmt.Sprintf(
				"The most similar project is from %d. Consider modernizing it with current tech stacks (e.g. Go microservices, Flutter, serverless).",
				*matches[0].Year))
		} else if age <= 1 {
			list = append(list, "This topic is currently trending. Ensure your scope is distinct to avoid duplication.")
		}
	}

	// Similarity-based pivot.
	switch analysis.ResultCategory {
	case domain.CategoryHigh:
		list = append(list,
			"Your idea is highly similar to existing work. Try focusing on a specific niche (e.g. healthcare, rural areas) instead of a generic solution.",
			"Consider a hybrid approach by integrating a secondary technology like blockchain or IoT.")
	case domain.CategoryMedium:
		list = append(list, "To increase novelty, focus on deployment and real-world testing, which many projects lack.")
	default:
		list = append(list, "Your idea looks original. Focus on feasibility and defining clear evaluation metrics.")
	}

	// Keyword-based refinements.
	titleLower := strings.ToLower(analysis.InputTitle)
	if strings.Contains(titleLower, "system") || strings.Contains(titleLower, "management") {
		list = append(list, "Make it user-centric: consider adding a mobile app interface for better accessibility.")
	}
	if strings.Contains(titleLower, "prediction") || strings.Contains(titleLower, "detection") {
		list = append(list, "Enhancement: explain how you will handle false positives and data privacy in your methodology.")
	}
	if !strings.Contains(titleLower, "cloud") && !strings.Contains(titleLower, "blockchain") {
		for _, m := range matches {
			if strings.Contains(strings.ToLower(m.Title), "machine learning") {
				list = append(list, "Differentiation: could you optimize this model for edge devices (IoT) instead of the cloud?")
				break
			}
		}
	}

	if len(list) > maxSuggestions {
		list = list[:maxSuggestions]
	}
	return list
}

// buildExplanation summarizes the score in one sentence referencing the top match.
func buildExplanation(score int, maxSim float64, matches []domain.IdeaMatch) string {
	if score == 100 {
		return "Your idea appears completely unique based on our database."
	}

	percentage := fmt.Sprintf("%.0f", maxSim*100)
	matchName := "an existing project"
	if len(matches) > 0 {
		matchName = fmt.Sprintf("'%s'", matches[0].Title)
	}
	return fmt.Sprintf(
		"Your originality score (%d%%) is calculated by deducting the maximum similarity found (%s%%). The most similar project found was %s with a %s%% match.",
		score, percentage, matchName, percentage)
}
