package cli

import (
	"fmt"
	"strconv"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/ukydev/taller-finder/internal/location"
	"github.com/ukydev/taller-finder/internal/models"
	"github.com/ukydev/taller-finder/internal/proximity"
)

type placeRow struct {
	Rank        int      `json:"rank" yaml:"rank"`
	ID          string   `json:"id" yaml:"id"`
	Name        string   `json:"name" yaml:"name"`
	Address     string   `json:"address" yaml:"address"`
	Category    string   `json:"category" yaml:"category"`
	DistanceKm  float64  `json:"distance_km" yaml:"distance_km"`
	Approximate bool     `json:"location_approximate" yaml:"location_approximate"`
	Rating      *float64 `json:"rating" yaml:"rating"`
	Reviews     uint32   `json:"review_count" yaml:"review_count"`
	URL         string   `json:"external_url" yaml:"external_url"`
}

type searchResult struct {
	Reference models.GeoPoint `json:"reference" yaml:"reference"`
	Order     string          `json:"order" yaml:"order"`
	Category  string          `json:"category,omitempty" yaml:"category,omitempty"`
	Results   []placeRow      `json:"results" yaml:"results"`
}

func newSearchCommand(deps Dependencies) *cobra.Command {
	var flags globalFlags
	var address string
	var lat, lng float64
	var tipo string
	var order string

	cmd := &cobra.Command{
		Use:   "search",
		Short: "Search workshops near an address or a position.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			format, err := ParseFormat(flags.Format)
			if err != nil {
				return err
			}
			sortOrder, err := models.ParseSortOrder(order)
			if err != nil {
				return err
			}
			var category *models.ServiceCategory
			if tipo != "" {
				c, err := models.ParseCategory(tipo)
				if err != nil {
					return err
				}
				category = &c
			}

			latSet, lngSet := cmd.Flags().Changed("lat"), cmd.Flags().Changed("lng")
			if latSet != lngSet {
				return fmt.Errorf("--lat and --lng must be given together")
			}
			if address != "" && latSet {
				return fmt.Errorf("--address cannot be combined with --lat/--lng")
			}
			var position *models.GeoPoint
			if latSet {
				position = &models.GeoPoint{Lat: lat, Lng: lng}
			}

			service := proximity.NewService(
				deps.NewSearcher(flags.API),
				deps.Geocoder,
				location.NewStaticLocator(position, true),
				proximity.WithProviderName("finder_api"),
			)
			mode := proximity.DeviceLocation
			if address != "" {
				mode = proximity.FreeTextAddress
			}
			ref, err := service.ResolveReferencePoint(cmd.Context(), mode, address)
			if err != nil {
				return err
			}
			found, err := service.Search(cmd.Context(), ref, category)
			if err != nil {
				return err
			}

			result := searchResult{Reference: ref, Order: sortOrder.String(), Results: []placeRow{}}
			if category != nil {
				result.Category = category.Label()
			}
			for place := range proximity.SortAndFilter(found, sortOrder, category).All() {
				result.Results = append(result.Results, placeRow{
					Rank:        len(result.Results) + 1,
					ID:          place.ID,
					Name:        place.Name,
					Address:     place.Address,
					Category:    place.Category.Label(),
					DistanceKm:  place.DistanceKm,
					Approximate: place.LocationApproximate,
					Rating:      place.Rating,
					Reviews:     place.ReviewCount,
					URL:         place.ExternalURL,
				})
			}

			if format != FormatTable {
				return writePayload(cmd.OutOrStdout(), result, format)
			}
			return writePlacesTable(cmd, result)
		},
	}
	addGlobalFlags(cmd.Flags(), &flags)
	cmd.Flags().StringVar(&address, "address", "", "Free-text address to search around. Cannot be combined with --lat/--lng.")
	cmd.Flags().Float64Var(&lat, "lat", 0, "Latitude of the current position.")
	cmd.Flags().Float64Var(&lng, "lng", 0, "Longitude of the current position.")
	cmd.Flags().StringVar(&tipo, "tipo", "", "Service category, for example Mecánica, Neumáticos or Chapa.")
	cmd.Flags().StringVar(&order, "order", "distance", "Sort order: distance or rating.")
	return cmd
}

func writePlacesTable(cmd *cobra.Command, result searchResult) error {
	out := cmd.OutOrStdout()
	if len(result.Results) == 0 {
		_, err := fmt.Fprintln(out, "No workshops found.")
		return err
	}
	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	_, _ = fmt.Fprintln(tw, "#\tNAME\tDISTANCE\tRATING\tREVIEWS\tADDRESS")
	for _, row := range result.Results {
		distance := fmt.Sprintf("%.2f km", row.DistanceKm)
		if row.Approximate {
			distance = "?"
		}
		rating := "-"
		if row.Rating != nil {
			rating = strconv.FormatFloat(*row.Rating, 'f', 1, 64)
		}
		_, _ = fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%d\t%s\n", row.Rank, row.Name, distance, rating, row.Reviews, row.Address)
	}
	return tw.Flush()
}
