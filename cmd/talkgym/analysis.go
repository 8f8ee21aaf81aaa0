package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/talkgym/talkgym-client/internal/api"
)

func newAnalysisCmd(env *cliEnv) *cobra.Command {
	return &cobra.Command{
		Use:   "analysis <session-id>",
		Short: "Show the session's performance analysis, generating it if needed",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			analysis, err := env.app.API().FetchOrGenerateAnalysis(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			printAnalysis(analysis)
			return nil
		},
	}
}

func printAnalysis(a *api.Analysis) {
	fmt.Printf("Session Analysis: %s\n", a.Session.Title)
	fmt.Printf("Topic: %s  Type: %s  Generated: %s\n\n",
		a.Session.Topic, a.Session.Type, a.GeneratedAt.Format("2006-01-02 15:04"))

	fmt.Println("Overall Performance")
	fmt.Printf("  Engagement: %d%%  Collaboration: %d%%  Topic Relevance: %d%%\n",
		a.Overall.Engagement, a.Overall.Collaboration, a.Overall.TopicRelevance)
	if a.Overall.Summary != "" {
		fmt.Printf("  Summary: %s\n", a.Overall.Summary)
	}
	for _, point := range a.Overall.KeyPoints {
		fmt.Printf("  - %s\n", point)
	}

	for _, p := range a.Participants {
		tag := "human"
		if p.ParticipantType == "ai" {
			tag = "ai"
		}
		fmt.Printf("\n%s [%s] — overall %d%%\n", p.UserName, tag, p.Feedback.OverallScore)
		fmt.Printf("  Speaking %d%%  Contributions %d  Clarity %d%%  Confidence %d%%\n",
			p.Participation.SpeakingTime, p.Participation.Contributions,
			p.Participation.Clarity, p.Participation.Confidence)
		printList("  Strengths", p.Feedback.Strengths)
		printList("  Improvements", p.Feedback.Improvements)
		printList("  Suggestions", p.Feedback.Suggestions)
	}

	if a.Transcript != "" {
		fmt.Printf("\nTranscript\n%s\n", a.Transcript)
	}
}

func printList(label string, items []string) {
	if len(items) == 0 {
		return
	}
	fmt.Printf("%s: %s\n", label, strings.Join(items, "; "))
}
