package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/HendryAvila/spinforge/internal/engine"
	"github.com/HendryAvila/spinforge/internal/seed"
	"github.com/HendryAvila/spinforge/internal/spintax"
)

func (c *cli) generateCmd() *cobra.Command {
	var (
		req   engine.GenerateRequest
		niche map[string]string
	)
	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate and store one slice of a campaign's headlines",
		Long: `Enumerates [offset, offset+max) of the campaign's location × spintax
space and stores every headline the campaign does not have yet.

Repeat with --offset set to the reported nextOffset until done is true.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := c.open()
			if err != nil {
				return err
			}
			defer app.Close()

			if len(niche) > 0 {
				req.NicheVariables = spintax.Variables(niche)
			}
			resp, err := app.Engine.Generate(cmd.Context(), req)
			if err != nil && resp.Results.Processed == 0 {
				return err
			}
			if perr := printJSON(cmd.OutOrStdout(), resp); perr != nil {
				return perr
			}
			return err
		},
	}
	cmd.Flags().StringVar(&req.CampaignID, "campaign", "", "campaign id (required)")
	cmd.Flags().StringVar(&req.Template, "template", "", "headline template override")
	cmd.Flags().Int64Var(&req.MaxCombinations, "max", 0, "combinations in this slice (default from config)")
	cmd.Flags().IntVar(&req.BatchSize, "batch", 0, "rows per insert batch (default from config)")
	cmd.Flags().Int64Var(&req.Offset, "offset", 0, "global index to start from")
	cmd.Flags().StringToStringVar(&niche, "niche", nil, "niche variables, e.g. --niche niche=plumber")
	_ = cmd.MarkFlagRequired("campaign")
	return cmd
}

func (c *cli) previewCmd() *cobra.Command {
	var req engine.PreviewRequest
	cmd := &cobra.Command{
		Use:   "preview",
		Short: "Print random resolutions of a template",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := c.open()
			if err != nil {
				return err
			}
			defer app.Close()

			resp, err := app.Engine.Preview(cmd.Context(), req)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), resp)
		},
	}
	cmd.Flags().StringVarP(&req.Template, "template", "t", "", "spintax template")
	cmd.Flags().StringVar(&req.CampaignID, "campaign", "", "use the campaign's headline template")
	cmd.Flags().IntVarP(&req.PreviewCount, "count", "n", 0, "number of samples (default from config)")
	cmd.MarkFlagsOneRequired("template", "campaign")
	return cmd
}

func (c *cli) countCmd() *cobra.Command {
	var (
		req  engine.MetadataRequest
		mode string
	)
	cmd := &cobra.Command{
		Use:   "count",
		Short: "Count the combinations of a template without generating them",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if mode != "" {
				m, err := engine.ParseLocationMode(mode)
				if err != nil {
					return err
				}
				req.LocationMode = m
			}

			app, err := c.open()
			if err != nil {
				return err
			}
			defer app.Close()

			md, err := app.Engine.Metadata(cmd.Context(), req)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), md)
		},
	}
	cmd.Flags().StringVarP(&req.Template, "template", "t", "", "spintax template")
	cmd.Flags().StringVar(&req.CampaignID, "campaign", "", "count a campaign's space")
	cmd.Flags().StringVar(&mode, "mode", "", "location mode: state, county or city")
	cmd.Flags().StringVar(&req.LocationTarget, "target", "", "state or county id the mode is filtered by")
	cmd.Flags().Int64Var(&req.MaxCombinations, "max", 0, "generation cap the truncation flag is computed against")
	cmd.MarkFlagsOneRequired("template", "campaign")
	return cmd
}

func (c *cli) assembleCmd() *cobra.Command {
	var (
		req      engine.AssembleRequest
		htmlOnly bool
	)
	cmd := &cobra.Command{
		Use:   "assemble",
		Short: "Assemble one article from a template",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := c.open()
			if err != nil {
				return err
			}
			defer app.Close()

			resp, err := app.Engine.AssembleArticle(cmd.Context(), req)
			if err != nil {
				return err
			}
			if htmlOnly {
				_, err := fmt.Fprintln(cmd.OutOrStdout(), resp.Article.HTMLContent)
				return err
			}
			return printJSON(cmd.OutOrStdout(), resp)
		},
	}
	cmd.Flags().StringVar(&req.TemplateID, "template-id", "", "article template id (required)")
	cmd.Flags().StringVar(&req.AvatarID, "avatar", "", "avatar id")
	cmd.Flags().StringVar(&req.VariantKey, "variant", "", "avatar grammar variant, e.g. male or female")
	cmd.Flags().StringVar(&req.Niche, "niche", "", "business niche")
	cmd.Flags().StringVar(&req.CityID, "city-id", "", "city id")
	cmd.Flags().StringVar(&req.CampaignID, "campaign", "", "campaign the article belongs to")
	cmd.Flags().StringVar(&req.Site.Name, "site-name", "", "site name")
	cmd.Flags().StringVar(&req.Site.URL, "site-url", "", "site url")
	cmd.Flags().BoolVar(&req.Persist, "persist", false, "store the article")
	cmd.Flags().BoolVar(&htmlOnly, "html", false, "print only the HTML content")
	_ = cmd.MarkFlagRequired("template-id")
	return cmd
}

func (c *cli) seedCmd() *cobra.Command {
	var demo bool
	cmd := &cobra.Command{
		Use:   "seed [FILE.yaml]",
		Short: "Import locations, blocks, avatars and campaigns from a YAML fixture",
		Long: `Imports a YAML fixture into the store. Records are upserted by id, so a
fixture can be applied repeatedly; existing jobs keep their progress.

Use --demo to load the built-in Texas roofing campaign.`,
		Args: func(cmd *cobra.Command, args []string) error {
			if demo {
				return cobra.NoArgs(cmd, args)
			}
			return cobra.ExactArgs(1)(cmd, args)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			var (
				f   seed.Fixture
				err error
			)
			if demo {
				f, err = seed.Demo()
			} else {
				f, err = seed.LoadFile(args[0])
			}
			if err != nil {
				return err
			}

			app, err := c.open()
			if err != nil {
				return err
			}
			defer app.Close()

			sum, err := app.Seed(cmd.Context(), f)
			if err != nil {
				return err
			}
			c.logger.Info("fixture applied", zap.Int("campaigns", sum.Campaigns), zap.Int("jobs", sum.Jobs))
			return printJSON(cmd.OutOrStdout(), sum)
		},
	}
	cmd.Flags().BoolVar(&demo, "demo", false, "load the built-in demo fixture")
	return cmd
}
