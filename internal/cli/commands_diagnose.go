package cli

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ukydev/taller-finder/internal/models"
)

type apiError struct {
	Error   string `json:"error"`
	Kind    string `json:"kind"`
	Details string `json:"details"`
}

func newDiagnoseCommand(deps Dependencies) *cobra.Command {
	var flags globalFlags
	var req models.DiagnosisRequest
	var vehicleType string

	cmd := &cobra.Command{
		Use:   "diagnose",
		Short: "Ask the finder API for likely causes of a fault.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			format, err := ParseFormat(flags.Format)
			if err != nil {
				return err
			}
			if strings.TrimSpace(req.Vehicle) == "" || strings.TrimSpace(req.Symptoms) == "" {
				return fmt.Errorf("--vehicle and --symptoms are required")
			}
			req.VehicleType = models.VehicleType(vehicleType)

			body, err := json.Marshal(req)
			if err != nil {
				return err
			}
			endpoint := strings.TrimSuffix(flags.API, "/") + "/api/diagnostico"
			httpReq, err := http.NewRequestWithContext(cmd.Context(), http.MethodPost, endpoint, bytes.NewReader(body))
			if err != nil {
				return err
			}
			httpReq.Header.Set("Content-Type", "application/json")

			client := deps.HTTPClient
			if client == nil {
				client = http.DefaultClient
			}
			resp, err := client.Do(httpReq)
			if err != nil {
				return fmt.Errorf("contact finder API: %w", err)
			}
			defer resp.Body.Close()

			data, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
			if err != nil {
				return fmt.Errorf("read response: %w", err)
			}
			if resp.StatusCode != http.StatusOK {
				var apiErr apiError
				if json.Unmarshal(data, &apiErr) == nil && apiErr.Error != "" {
					return fmt.Errorf("diagnosis failed (%d %s): %s", resp.StatusCode, apiErr.Kind, apiErr.Error)
				}
				return fmt.Errorf("diagnosis failed: %s", resp.Status)
			}

			var diagnosis models.DiagnosisResponse
			if err := json.Unmarshal(data, &diagnosis); err != nil {
				return fmt.Errorf("decode response: %w", err)
			}
			if format != FormatTable {
				return writePayload(cmd.OutOrStdout(), diagnosis, format)
			}

			out := cmd.OutOrStdout()
			header := "Diagnosis (" + diagnosis.Provider + ")"
			if diagnosis.Simulated {
				header += " [simulated]"
			}
			_, _ = fmt.Fprintln(out, header)
			for _, line := range diagnosis.Lines {
				if _, err := fmt.Fprintln(out, "  "+line); err != nil {
					return err
				}
			}
			return nil
		},
	}
	addGlobalFlags(cmd.Flags(), &flags)
	cmd.Flags().StringVar(&req.Vehicle, "vehicle", "", "Make and model, for example \"Seat Ibiza 2015\".")
	cmd.Flags().StringVar(&req.Symptoms, "symptoms", "", "Description of the fault.")
	cmd.Flags().StringVar(&vehicleType, "type", string(models.VehicleCar), "Vehicle type: Auto or Moto.")
	cmd.Flags().StringVar(&req.Provider, "provider", "", "Completion provider: openai or gemini.")
	return cmd
}
