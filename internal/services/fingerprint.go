package services

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"sort"
	"supply-chain-optimizer/internal/domain"
	"supply-chain-optimizer/internal/ports"
)

// Fingerprint identifies a dataset plus solve options for result caching.
// Map entries are written in sorted order so equal inputs hash equally.
func Fingerprint(data *domain.Dataset, opts ports.SolveOptions) string {
	h := sha256.New()

	fmt.Fprintf(h, "opts %d %g\n", opts.TimeLimit, opts.MIPGap)
	fmt.Fprintf(h, "special %s %g\n", data.Special(), data.SpecialFreight)
	for _, cp := range data.CollectionPoints {
		fmt.Fprintf(h, "site %s", cp.SiteID)
		for _, m := range domain.Materials {
			fmt.Fprintf(h, " %s:%g@%g", m, cp.Volumes[m], cp.Prices[m])
		}
		io.WriteString(h, "\n")
	}

	inbound := make([]string, 0, len(data.InboundFreight))
	for k, v := range data.InboundFreight {
		inbound = append(inbound, fmt.Sprintf("in %s>%s %g", k.Origin, k.Destination, v))
	}
	sort.Strings(inbound)
	for _, line := range inbound {
		io.WriteString(h, line+"\n")
	}

	outbound := make([]string, 0, len(data.OutboundFreight))
	for k, v := range data.OutboundFreight {
		outbound = append(outbound, fmt.Sprintf("out %s>%s %g", k.Site, k.Port, v))
	}
	sort.Strings(outbound)
	for _, line := range outbound {
		io.WriteString(h, line+"\n")
	}

	for _, p := range data.Ports {
		fmt.Fprintf(h, "port %s %g %g\n", p.Name, p.OperationalCost, p.SeaFreightCost)
	}
	fmt.Fprintf(h, "target %g\n", data.Production.TargetTons)
	for _, m := range domain.Materials {
		fmt.Fprintf(h, "mat %s %g %g\n", m, data.Production.YieldFactors[m], data.Production.MaxConsumption[m])
	}
	fmt.Fprintf(h, "forced %s %v\n", data.ForcedFacility, data.ForcedPorts)

	return hex.EncodeToString(h.Sum(nil))
}
