package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/codequest-game/codequest/internal/model"
)

func newQuestionCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "question",
		Short: "Question bank maintenance commands",
	}

	cmd.AddCommand(newQuestionImportCmd())
	cmd.AddCommand(newQuestionDeleteCmd())

	return cmd
}

// questionFile is the YAML shape accepted by 'question import'
type questionFile struct {
	Questions []struct {
		ID         int64  `yaml:"id"`
		Text       string `yaml:"text"`
		Difficulty int    `yaml:"difficulty"`
		Choices    []struct {
			ID      int64  `yaml:"id"`
			Text    string `yaml:"text"`
			Correct bool   `yaml:"correct"`
		} `yaml:"choices"`
	} `yaml:"questions"`
}

func newQuestionImportCmd() *cobra.Command {
	var file string

	cmd := &cobra.Command{
		Use:   "import",
		Short: "Import questions from a YAML file",
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(file)
			if err != nil {
				return fmt.Errorf("read question file: %w", err)
			}

			var parsed questionFile
			if err := yaml.Unmarshal(data, &parsed); err != nil {
				return fmt.Errorf("parse question file: %w", err)
			}

			app, closeStorage, err := newApp()
			if err != nil {
				return err
			}
			defer closeStorage()

			for _, q := range parsed.Questions {
				question := &model.Question{
					ID:         model.QuestionID(q.ID),
					Text:       q.Text,
					Difficulty: q.Difficulty,
				}
				for _, c := range q.Choices {
					question.Choices = append(question.Choices, model.Choice{
						ID:        model.ChoiceID(c.ID),
						Text:      c.Text,
						IsCorrect: c.Correct,
					})
				}

				if err := question.Validate(); err != nil {
					return fmt.Errorf("question %d: %w", q.ID, err)
				}
				if err := app.Storage.SaveQuestion(cmd.Context(), question); err != nil {
					return fmt.Errorf("save question %d: %w", q.ID, err)
				}
			}

			NewOutput(outputFormat).PrintMessage(fmt.Sprintf("imported %d questions", len(parsed.Questions)))
			return nil
		},
	}

	cmd.Flags().StringVar(&file, "file", "", "YAML question file (required)")
	_ = cmd.MarkFlagRequired("file")

	return cmd
}

func newQuestionDeleteCmd() *cobra.Command {
	var id int64

	cmd := &cobra.Command{
		Use:   "delete",
		Short: "Delete a question from the bank",
		RunE: func(cmd *cobra.Command, args []string) error {
			app, closeStorage, err := newApp()
			if err != nil {
				return err
			}
			defer closeStorage()

			if err := app.Storage.DeleteQuestion(cmd.Context(), model.QuestionID(id)); err != nil {
				return err
			}

			NewOutput(outputFormat).PrintMessage(fmt.Sprintf("deleted question %d", id))
			return nil
		},
	}

	cmd.Flags().Int64Var(&id, "id", 0, "Question ID (required)")
	_ = cmd.MarkFlagRequired("id")

	return cmd
}
