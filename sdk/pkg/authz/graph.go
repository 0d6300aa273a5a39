package authz

// roleGraph 维护按域隔离的角色继承关系（g 规则的邻接表）。
// 继承关系只在同一个域内生效，规则不会隐式跨域。
type roleGraph struct {
	// domain -> child role -> parent roles
	edges map[string]map[string][]string
}

func newRoleGraph() *roleGraph {
	return &roleGraph{edges: make(map[string]map[string][]string)}
}

func (g *roleGraph) add(domain, child, parent string) {
	domainEdges, ok := g.edges[domain]
	if !ok {
		domainEdges = make(map[string][]string)
		g.edges[domain] = domainEdges
	}
	domainEdges[child] = append(domainEdges[child], parent)
}

func (g *roleGraph) remove(domain, child, parent string) {
	domainEdges, ok := g.edges[domain]
	if !ok {
		return
	}
	parents := domainEdges[child]
	for i, p := range parents {
		if p == parent {
			domainEdges[child] = append(parents[:i], parents[i+1:]...)
			break
		}
	}
	if len(domainEdges[child]) == 0 {
		delete(domainEdges, child)
	}
	if len(domainEdges) == 0 {
		delete(g.edges, domain)
	}
}

// closure 返回 subject 在指定域内的有效角色集：subject 自身加上沿 g 边
// 可达的所有角色。广度优先，visited 集合保证即使 g 规则成环也会终止：
// 检测到回边时停止继续扩展，使用已经找到的角色。
func (g *roleGraph) closure(domain, subject string) []string {
	roles := []string{subject}
	visited := map[string]bool{subject: true}

	domainEdges := g.edges[domain]
	if domainEdges == nil {
		return roles
	}

	for i := 0; i < len(roles); i++ {
		for _, parent := range domainEdges[roles[i]] {
			if visited[parent] {
				continue
			}
			visited[parent] = true
			roles = append(roles, parent)
		}
	}
	return roles
}

func (g *roleGraph) reset() {
	g.edges = make(map[string]map[string][]string)
}
