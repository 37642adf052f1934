package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/yi-nology/showcase/biz/dal/model"
	"github.com/yi-nology/showcase/pkg/ui"
)

var storylineCmd = &cobra.Command{
	Use:   "storyline",
	Short: "Export or replace the storyline timeline",
}

var storylineDumpCmd = &cobra.Command{
	Use:   "dump",
	Short: "Write the storyline as YAML to stdout",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		items, err := showcase.Service.Storyline(getContext(cmd))
		if err != nil {
			return err
		}
		return writeStoryline(cmd.OutOrStdout(), items)
	},
}

var storylineSeedCmd = &cobra.Command{
	Use:   "seed <file.yaml>",
	Short: "Replace the storyline with the entries of a YAML file",
	Long: `Replace the storyline with the entries of a YAML file.

The file is a list of entries:

  - title: First render
    description: Where it started.
    media_url: https://example.com/first.png
  - title: Showreel
    media_url: https://example.com/reel.mp4
    is_video: true

Entries keep file order unless an explicit order is given.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		f, err := os.Open(args[0])
		if err != nil {
			return err
		}
		defer f.Close()

		items, err := readStoryline(f)
		if err != nil {
			return fmt.Errorf("parse %s: %w", args[0], err)
		}
		if err := showcase.Service.ReplaceStoryline(getContext(cmd), items); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), ui.FormatSuccess(fmt.Sprintf("Storyline replaced with %d entries", len(items))))
		return nil
	},
}

func init() {
	storylineCmd.AddCommand(storylineDumpCmd)
	storylineCmd.AddCommand(storylineSeedCmd)
}

type storylineEntry struct {
	Title       string `yaml:"title"`
	Description string `yaml:"description,omitempty"`
	MediaURL    string `yaml:"media_url,omitempty"`
	IsVideo     bool   `yaml:"is_video,omitempty"`
	Order       *int   `yaml:"order,omitempty"`
}

func readStoryline(r io.Reader) ([]model.StorylineItem, error) {
	var entries []storylineEntry
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&entries); err != nil && err != io.EOF {
		return nil, err
	}

	items := make([]model.StorylineItem, 0, len(entries))
	for i, e := range entries {
		if e.Title == "" {
			return nil, fmt.Errorf("entry %d: title is required", i+1)
		}
		order := i
		if e.Order != nil {
			order = *e.Order
		}
		items = append(items, model.StorylineItem{
			Title:       e.Title,
			Description: e.Description,
			MediaURL:    e.MediaURL,
			IsVideo:     e.IsVideo,
			Order:       order,
		})
	}
	return items, nil
}

func writeStoryline(w io.Writer, items []model.StorylineItem) error {
	entries := make([]storylineEntry, 0, len(items))
	for _, it := range items {
		order := it.Order
		entries = append(entries, storylineEntry{
			Title:       it.Title,
			Description: it.Description,
			MediaURL:    it.MediaURL,
			IsVideo:     it.IsVideo,
			Order:       &order,
		})
	}
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(entries); err != nil {
		return err
	}
	return enc.Close()
}
