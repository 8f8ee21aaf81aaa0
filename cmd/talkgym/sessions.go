package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/talkgym/talkgym-client/internal/api"
)

func newSessionsCmd(env *cliEnv) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sessions",
		Short: "List and create practice sessions",
	}
	cmd.AddCommand(newSessionsListCmd(env), newSessionsCreateCmd(env))
	return cmd
}

func newSessionsListCmd(env *cliEnv) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List your sessions",
		RunE: func(cmd *cobra.Command, _ []string) error {
			sessions, err := env.app.API().MySessions(cmd.Context())
			if err != nil {
				return err
			}
			if len(sessions) == 0 {
				fmt.Println("No sessions yet. Create one with: talkgym sessions create")
				return nil
			}
			for _, s := range sessions {
				fmt.Printf("%s  %-10s %-20s %s\n", s.ID, s.Status, s.Type, s.Title)
			}
			return nil
		},
	}
}

func newSessionsCreateCmd(env *cliEnv) *cobra.Command {
	req := api.CreateSessionRequest{}

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a new practice session",
		RunE: func(cmd *cobra.Command, _ []string) error {
			session, err := env.app.API().CreateSession(cmd.Context(), req)
			if err != nil {
				return err
			}
			fmt.Printf("Created session %s\n", session.ID)
			if session.ShareableCode != "" {
				fmt.Printf("Share code: %s\n", session.ShareableCode)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&req.Title, "title", "", "session title")
	cmd.Flags().StringVar(&req.Description, "description", "", "what this session is about")
	cmd.Flags().StringVar(&req.Topic, "topic", "", "discussion or interview topic")
	cmd.Flags().StringVar(&req.Type, "type", "group-discussion", "session type (group-discussion or interview)")
	cmd.Flags().IntVar(&req.Duration, "duration", 60, "duration in minutes")
	cmd.Flags().IntVar(&req.MaxParticipants, "max-participants", 6, "maximum participants")
	cmd.Flags().IntVar(&req.AIParticipants, "ai-participants", 2, "number of AI participants")
	cmd.Flags().IntVar(&req.RealParticipants, "real-participants", 2, "number of human participants")
	_ = cmd.MarkFlagRequired("title")
	_ = cmd.MarkFlagRequired("topic")
	return cmd
}

func newJoinCmd(env *cliEnv) *cobra.Command {
	return &cobra.Command{
		Use:   "join <share-code>",
		Short: "Join a session via its shareable code",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			preview, err := env.app.API().PreviewByCode(ctx, args[0])
			if err != nil {
				return err
			}
			fmt.Printf("Joining %q (%s)\n", preview.Title, preview.Topic)

			session, err := env.app.API().JoinByCode(ctx, args[0])
			if err != nil {
				return err
			}
			fmt.Printf("Joined. Enter the room with: talkgym room %s\n", session.ID)
			return nil
		},
	}
}

func newEndCmd(env *cliEnv) *cobra.Command {
	return &cobra.Command{
		Use:   "end <session-id>",
		Short: "End a session so its analysis can be generated",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := env.app.API().EndSession(cmd.Context(), args[0]); err != nil {
				return err
			}
			fmt.Printf("Session ended. View the report with: talkgym analysis %s\n", args[0])
			return nil
		},
	}
}
