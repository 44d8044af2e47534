package main

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/naumansqb/jobtrack/internal/db"
	"github.com/naumansqb/jobtrack/internal/schemas"
)

var importEmail string

var importCmd = &cobra.Command{
	Use:   "import <file.json>",
	Short: "Bulk-import jobs and contacts from a JSON file",
	Long:  `Validate a JSON import file against the import schema and insert its jobs and contacts for the user named by --email.`,
	Args:  cobra.ExactArgs(1),
	RunE:  runImport,
}

func init() {
	importCmd.Flags().StringVar(&importEmail, "email", "", "Email of the user to import into (required)")
	_ = importCmd.MarkFlagRequired("email")
	rootCmd.AddCommand(importCmd)
}

// importFile mirrors the import schema
type importFile struct {
	Jobs []struct {
		Title     string     `json:"title"`
		Company   string     `json:"company"`
		Status    string     `json:"status"`
		Deadline  *time.Time `json:"deadline"`
		SourceURL *string    `json:"source_url"`
	} `json:"jobs"`
	Contacts []struct {
		Name                 string     `json:"name"`
		Email                *string    `json:"email"`
		Company              *string    `json:"company"`
		RelationshipStrength *int       `json:"relationship_strength"`
		LastContactDate      *time.Time `json:"last_contact_date"`
	} `json:"contacts"`
}

func runImport(cmd *cobra.Command, args []string) error {
	data, err := os.ReadFile(args[0])
	if err != nil {
		return fmt.Errorf("failed to read import file: %w", err)
	}

	if err := schemas.ValidateImport(data); err != nil {
		return err
	}

	var file importFile
	if err := json.Unmarshal(data, &file); err != nil {
		return fmt.Errorf("failed to parse import file: %w", err)
	}

	ctx := cmd.Context()
	database, err := connectDB(ctx)
	if err != nil {
		return err
	}
	defer database.Close()

	user, err := database.GetUserByEmail(ctx, importEmail)
	if err != nil {
		return err
	}
	if user == nil {
		return fmt.Errorf("no user with email %s", importEmail)
	}

	for _, j := range file.Jobs {
		status := j.Status
		if status == "" {
			status = db.JobStatusInterested
		}
		if _, err := database.CreateJob(ctx, &db.JobCreateInput{
			UserID:    user.ID,
			Title:     j.Title,
			Company:   j.Company,
			Status:    status,
			Deadline:  j.Deadline,
			SourceURL: j.SourceURL,
		}); err != nil {
			return fmt.Errorf("failed to import job %q: %w", j.Title, err)
		}
	}

	for _, c := range file.Contacts {
		if _, err := database.CreateContact(ctx, &db.ContactCreateInput{
			UserID:               user.ID,
			Name:                 c.Name,
			Email:                c.Email,
			Company:              c.Company,
			RelationshipStrength: c.RelationshipStrength,
			LastContactDate:      c.LastContactDate,
		}); err != nil {
			return fmt.Errorf("failed to import contact %q: %w", c.Name, err)
		}
	}

	fmt.Printf("Imported %d jobs and %d contacts\n", len(file.Jobs), len(file.Contacts))
	return nil
}
