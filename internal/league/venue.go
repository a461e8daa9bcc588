package league

import (
	"fmt"
	"math"
	"sort"
)

const (
	// VenueGroups is the number of geographic venue clusters of the group stage.
	VenueGroups = 4
	kmeansMaxIter = 100
)

// ClusterVenues splits venues into k geographically compact clusters whose
// sizes differ by at most one, seeding with k-means++ from rng. It returns
// the clusters and their centroids.
func ClusterVenues(venues []*Venue, k int, rng Rand) ([][]*Venue, []Point, error) {
	n := len(venues)
	if k <= 0 || n < k {
		return nil, nil, fmt.Errorf("cannot split %d venues into %d clusters: %w", n, k, ErrValidation)
	}
	points := make([]Point, n)
	for i, v := range venues {
		points[i] = Point{Lat: v.Lat, Lon: v.Lon}
	}
	// every cluster holds lo venues, extra of them one more
	lo, extra := n/k, n%k

	// 1) k-means++ seeding
	centroids := []Point{points[rng.Intn(n)]}
	for len(centroids) < k {
		weights := make([]float64, n)
		total := 0.0
		for i, p := range points {
			best := math.Inf(1)
			for _, c := range centroids {
				best = math.Min(best, Haversine(p, c))
			}
			weights[i] = best * best
			total += weights[i]
		}
		r := rng.Float64() * total
		acc := 0.0
		for i, w := range weights {
			acc += w
			if acc >= r {
				centroids = append(centroids, points[i])
				break
			}
		}
	}

	// 2) capacity-bounded greedy assignment, then recentre, until stable
	assign := make([]int, n)
	for iter := 0; iter < kmeansMaxIter; iter++ {
		dist := make([][]float64, n)
		for i, p := range points {
			dist[i] = make([]float64, k)
			for j, c := range centroids {
				dist[i][j] = Haversine(p, c)
			}
		}
		assigned := make([]bool, n)
		counts := make([]int, k)
		big := 0
		for pass := 0; pass < n; pass++ {
			bestI, bestJ, best := -1, -1, math.Inf(1)
			for i := range points {
				if assigned[i] {
					continue
				}
				for j := 0; j < k; j++ {
					open := counts[j] < lo || (counts[j] == lo && big < extra)
					if open && dist[i][j] < best {
						bestI, bestJ, best = i, j, dist[i][j]
					}
				}
			}
			assigned[bestI] = true
			assign[bestI] = bestJ
			counts[bestJ]++
			if counts[bestJ] == lo+1 {
				big++
			}
		}

		changed := false
		for j := range centroids {
			var lat, lon float64
			members := 0
			for i, a := range assign {
				if a == j {
					lat += points[i].Lat
					lon += points[i].Lon
					members++
				}
			}
			if members == 0 {
				continue
			}
			next := Point{Lat: lat / float64(members), Lon: lon / float64(members)}
			if Haversine(centroids[j], next) > 1e-6 {
				centroids[j] = next
				changed = true
			}
		}
		if !changed {
			break
		}
	}

	clusters := make([][]*Venue, k)
	for i, a := range assign {
		clusters[a] = append(clusters[a], venues[i])
	}
	return clusters, centroids, nil
}

func hostIndex(hostOrder []string, host string) int {
	for i, h := range hostOrder {
		if h == host {
			return i
		}
	}
	return math.MaxInt32
}

func countHosts(group []*Venue) int {
	n := 0
	for _, v := range group {
		if v.HostOpeningMatch != "" {
			n++
		}
	}
	return n
}

func topHost(group []*Venue, hostOrder []string) int {
	best := math.MaxInt32
	for _, v := range group {
		if v.HostOpeningMatch != "" {
			if i := hostIndex(hostOrder, v.HostOpeningMatch); i < best {
				best = i
			}
		}
	}
	return best
}

// PairVenueGroups clusters three-match and four-match venues separately and
// pairs the clusters by minimum total centroid distance. Groups holding more
// opening-match hosts, then earlier hosts, come first.
func PairVenueGroups(venues []*Venue, hostOrder []string, rng Rand) ([][]*Venue, error) {
	var three, four []*Venue
	for _, v := range venues {
		if v.Tier() == 4 {
			four = append(four, v)
		} else {
			three = append(three, v)
		}
	}
	threeClusters, threeCentroids, err := ClusterVenues(three, VenueGroups, rng)
	if err != nil {
		return nil, fmt.Errorf("clustering three-match venues: %w", err)
	}
	fourClusters, fourCentroids, err := ClusterVenues(four, VenueGroups, rng)
	if err != nil {
		return nil, fmt.Errorf("clustering four-match venues: %w", err)
	}

	cost := make([][]float64, VenueGroups)
	for i, a := range threeCentroids {
		cost[i] = make([]float64, VenueGroups)
		for j, b := range fourCentroids {
			cost[i][j] = Haversine(a, b)
		}
	}
	pairing := MinCostAssignment(cost)

	groups := make([][]*Venue, VenueGroups)
	for i, j := range pairing {
		groups[i] = append(append([]*Venue{}, threeClusters[i]...), fourClusters[j]...)
	}
	sort.SliceStable(groups, func(a, b int) bool {
		ha, hb := countHosts(groups[a]), countHosts(groups[b])
		if ha != hb {
			return ha > hb
		}
		return topHost(groups[a], hostOrder) < topHost(groups[b], hostOrder)
	})
	return groups, nil
}

// slotTiers gives the tier each of the five group slots must carry, keyed by
// the tiers of slot 1 and slot 3.
func slotTiers(first, third int) [5]int {
	switch {
	case first == 3 && third == 4:
		return [5]int{3, 4, 4, 4, 3}
	case first == 4 && third == 4:
		return [5]int{4, 3, 4, 4, 3}
	case first == 3 && third == 3:
		return [5]int{3, 4, 3, 4, 4}
	default:
		return [5]int{4, 3, 3, 4, 4}
	}
}

// orderVenueGroup places a group's five venues into slots. Opening-match hosts
// take slots 1, 3 and 5 by host order; the rest fill by tier and capacity.
func orderVenueGroup(group []*Venue, hostOrder []string) ([5]*Venue, error) {
	var slots [5]*Venue
	if len(group) != 5 {
		return slots, fmt.Errorf("venue group has %d venues, want 5: %w", len(group), ErrInvariant)
	}

	var hosts []*Venue
	byTier := map[int][]*Venue{}
	for _, v := range group {
		if v.HostOpeningMatch != "" {
			hosts = append(hosts, v)
		} else {
			byTier[v.Tier()] = append(byTier[v.Tier()], v)
		}
	}
	sort.SliceStable(hosts, func(i, j int) bool {
		return hostIndex(hostOrder, hosts[i].HostOpeningMatch) < hostIndex(hostOrder, hosts[j].HostOpeningMatch)
	})
	for tier := range byTier {
		list := byTier[tier]
		sort.SliceStable(list, func(i, j int) bool { return list[i].Capacity > list[j].Capacity })
	}
	take := func(tier int) *Venue {
		list := byTier[tier]
		if len(list) == 0 {
			return nil
		}
		byTier[tier] = list[1:]
		return list[0]
	}

	// 1) opening and second host slots
	if len(hosts) > 0 {
		slots[0] = hosts[0]
	} else {
		slots[0] = take(3)
	}
	if len(hosts) > 1 {
		slots[2] = hosts[1]
	} else {
		slots[2] = take(4)
	}
	if slots[0] == nil || slots[2] == nil {
		return slots, fmt.Errorf("venue group lacks lead venues: %w", ErrInvariant)
	}
	tiers := slotTiers(slots[0].Tier(), slots[2].Tier())

	// 2) third host, preferably the last slot
	for _, h := range hosts[min(len(hosts), 2):] {
		placed := false
		for _, s := range []int{4, 1, 3} {
			if slots[s] == nil && tiers[s] == h.Tier() {
				slots[s], placed = h, true
				break
			}
		}
		if !placed {
			return slots, fmt.Errorf("no slot for host venue %s: %w", h.Name, ErrInvariant)
		}
	}

	// 3) the rest by capacity
	for s := range slots {
		if slots[s] != nil {
			continue
		}
		if slots[s] = take(tiers[s]); slots[s] == nil {
			return slots, fmt.Errorf("venue group has no %d-match venue for slot %d: %w", tiers[s], s+1, ErrInvariant)
		}
	}
	return slots, nil
}

// venueRotation lists, per matchday and per group served, the two slot
// numbers (1-based) hosting that group's matches.
func venueRotation(slots [5]*Venue) [3][3][2]int {
	x, y := 3, 5
	if slots[2].Tier() == 3 {
		x, y = 5, 3
	}
	lead := 1
	if slots[0].Tier() == 3 {
		lead = 2
	}
	return [3][3][2]int{
		{{1, 2}, {x, 4}, {y, x}},
		{{x, lead}, {4, y}, {2, 1}},
		{{y, 4}, {1, 2}, {x, 4}},
	}
}

// groupServing maps the twelve tournament groups onto (row, venue group)
// cells, keyed by how many hosts the first venue group holds.
func groupServing(firstGroupHosts int) [3][4]int {
	switch firstGroupHosts {
	case 1:
		return [3][4]int{{0, 1, 2, 3}, {4, 5, 6, 7}, {8, 9, 10, 11}}
	case 2:
		return [3][4]int{{0, 2, 3, 4}, {1, 5, 6, 7}, {8, 9, 10, 11}}
	default:
		return [3][4]int{{0, 1, 3, 5}, {2, 6, 7, 8}, {4, 9, 10, 11}}
	}
}

// AllocateVenues builds the 72-match group-stage venue plan, indexed by match
// number - 1. It needs eight three-match and twelve four-match venues.
func AllocateVenues(venues []*Venue, hostOrder []string, rng Rand) ([]*Venue, error) {
	three, four := 0, 0
	for _, v := range venues {
		if v.Tier() == 4 {
			four++
		} else {
			three++
		}
	}
	if three != 2*VenueGroups || four != 3*VenueGroups {
		return nil, fmt.Errorf("need %d three-match and %d four-match venues, got %d and %d: %w",
			2*VenueGroups, 3*VenueGroups, three, four, ErrValidation)
	}

	groups, err := PairVenueGroups(venues, hostOrder, rng)
	if err != nil {
		return nil, err
	}
	ordered := make([][5]*Venue, len(groups))
	for i, g := range groups {
		if ordered[i], err = orderVenueGroup(g, hostOrder); err != nil {
			return nil, fmt.Errorf("ordering venue group %d: %w", i+1, err)
		}
	}

	serving := groupServing(countHosts(groups[0]))
	plan := make([]*Venue, 0, 72)
	for md := 0; md < 3; md++ {
		for g := 0; g < 12; g++ {
			row, col := cellOf(serving, g)
			for _, s := range venueRotation(ordered[col])[md][row] {
				plan = append(plan, ordered[col][s-1])
			}
		}
	}

	// keep the hosts' opening fixtures apart
	swap := func(from, to int) {
		for i := from; i <= to; i += 4 {
			plan[i], plan[i+1] = plan[i+1], plan[i]
		}
	}
	swap(3, 7)
	swap(25, 45)
	return plan, nil
}

func cellOf(serving [3][4]int, group int) (int, int) {
	for r, row := range serving {
		for c, g := range row {
			if g == group {
				return r, c
			}
		}
	}
	return 0, 0
}

// FixedSlotVenues lists the venues of the given slot groups, ordered by the
// position of their slot group in slotGroups, then by name.
func FixedSlotVenues(venues []*Venue, slotGroups []int) []*Venue {
	order := make(map[int]int, len(slotGroups))
	for i, g := range slotGroups {
		order[g] = i
	}
	var out []*Venue
	for _, v := range venues {
		if _, ok := order[v.SlotGroup]; ok {
			out = append(out, v)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if order[out[i].SlotGroup] != order[out[j].SlotGroup] {
			return order[out[i].SlotGroup] < order[out[j].SlotGroup]
		}
		return out[i].Name < out[j].Name
	})
	return out
}
