package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"deedgate/internal/fingerprint"
)

type hashOutput struct {
	Document      string `json:"document"`
	Size          string `json:"size"`
	ContentHash   string `json:"content_hash"`
	MetadataHash  string `json:"metadata_hash"`
	RecordHash    string `json:"record_hash"`
	CanonicalJSON string `json:"canonical_json"`
}

// newHashCommand computes the hashes a registration or verification would compute,
// without touching any backend.
func newHashCommand() *cobra.Command {
	var (
		factsFile string
		asJSON    bool
		facts     fingerprint.Facts
	)

	cmd := &cobra.Command{
		Use:   "hash <document>",
		Short: "Compute the content, metadata and record hashes of a deed",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if factsFile != "" {
				loaded, err := readFacts(factsFile)
				if err != nil {
					return err
				}
				facts = loaded
			}

			f, err := os.Open(args[0])
			if err != nil {
				return fmt.Errorf("open document: %w", err)
			}
			defer f.Close()

			counter := &countingReader{r: f}
			contentHash, err := fingerprint.ContentHashReader(counter)
			if err != nil {
				return fmt.Errorf("hash document: %w", err)
			}

			out := hashOutput{
				Document:      args[0],
				Size:          humanize.IBytes(uint64(counter.n)),
				ContentHash:   contentHash.String(),
				MetadataHash:  fingerprint.MetadataHash(facts),
				RecordHash:    fingerprint.BuildRecordHash(contentHash, facts).String(),
				CanonicalJSON: string(fingerprint.CanonicalJSON(facts)),
			}
			w := cmd.OutOrStdout()
			if asJSON {
				enc := json.NewEncoder(w)
				enc.SetIndent("", "  ")
				return enc.Encode(out)
			}
			fmt.Fprintf(w, "document:      %s (%s)\n", out.Document, out.Size)
			fmt.Fprintf(w, "content hash:  %s\n", out.ContentHash)
			fmt.Fprintf(w, "metadata hash: %s\n", out.MetadataHash)
			fmt.Fprintf(w, "record hash:   %s\n", out.RecordHash)
			fmt.Fprintf(w, "facts:         %s\n", out.CanonicalJSON)
			return nil
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&factsFile, "facts", "", "JSON file with the declared facts keyed as owner, ownerId, propertyTitle, ...")
	flags.BoolVar(&asJSON, "json", false, "Output as JSON")
	flags.StringVar(&facts.Owner, "owner", "", "Owner full name")
	flags.StringVar(&facts.OwnerID, "owner-id", "", "Owner national id")
	flags.StringVar(&facts.PropertyTitle, "title", "", "Property title")
	flags.StringVar(&facts.PropertyType, "type", "", "Property type")
	flags.StringVar(&facts.Location, "location", "", "Property location")
	flags.StringVar(&facts.Size, "size", "", "Size")
	flags.StringVar(&facts.Beds, "beds", "", "Bedrooms")
	flags.StringVar(&facts.Baths, "baths", "", "Bathrooms")
	flags.StringVar(&facts.Year, "year", "", "Year built")
	cmd.MarkFlagsMutuallyExclusive("facts", "owner")

	return cmd
}

// readFacts accepts any key order; missing keys hash as empty strings.
func readFacts(path string) (fingerprint.Facts, error) {
	buf, err := os.ReadFile(path)
	if err != nil {
		return fingerprint.Facts{}, fmt.Errorf("read facts: %w", err)
	}
	var fields map[string]string
	if err := json.Unmarshal(buf, &fields); err != nil {
		return fingerprint.Facts{}, fmt.Errorf("parse facts: %w", err)
	}
	return fingerprint.FactsFromMap(fields), nil
}

type countingReader struct {
	r io.Reader
	n int64
}

func (c *countingReader) Read(p []byte) (int, error) {
	n, err := c.r.Read(p)
	c.n += int64(n)
	return n, err
}
