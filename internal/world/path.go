// A* pathfinding over the tile grid. Paths are used for movement hints,
// not enforced movement: the companion may ignore them.
package world

import "container/heap"

// FindPath returns the shortest passable path from start to goal, inclusive
// of both endpoints, or nil when no path exists. Movement is 4-directional
// with uniform step cost.
func FindPath(m *Map, start, goal Pos) []Pos {
	if !m.Passable(start) || !m.Passable(goal) {
		return nil
	}
	if start == goal {
		return []Pos{start}
	}

	open := &nodeQueue{}
	heap.Init(open)
	heap.Push(open, node{pos: start, priority: Manhattan(start, goal)})

	cameFrom := make(map[Pos]Pos)
	gScore := map[Pos]int{start: 0}

	for open.Len() > 0 {
		current := heap.Pop(open).(node).pos
		if current == goal {
			return reconstruct(cameFrom, start, goal)
		}

		for _, d := range []Direction{DirNorth, DirSouth, DirEast, DirWest} {
			dx, dy := d.Delta()
			next := current.Add(dx, dy)
			if !m.Passable(next) {
				continue
			}
			tentative := gScore[current] + 1
			if g, seen := gScore[next]; seen && tentative >= g {
				continue
			}
			cameFrom[next] = current
			gScore[next] = tentative
			heap.Push(open, node{pos: next, priority: tentative + Manhattan(next, goal)})
		}
	}

	return nil
}

// NextStepToward returns the direction of the first step along the shortest
// path from start to goal, or DirNone when already there or unreachable.
func NextStepToward(m *Map, start, goal Pos) Direction {
	path := FindPath(m, start, goal)
	if len(path) < 2 {
		return DirNone
	}
	step := path[1]
	return Toward(start, step)
}

func reconstruct(cameFrom map[Pos]Pos, start, goal Pos) []Pos {
	path := []Pos{goal}
	for current := goal; current != start; {
		current = cameFrom[current]
		path = append(path, current)
	}
	// Reverse to run start → goal.
	for i, j := 0, len(path)-1; i < j; i, j = i+1, j-1 {
		path[i], path[j] = path[j], path[i]
	}
	return path
}

type node struct {
	pos      Pos
	priority int
}

type nodeQueue []node

func (q nodeQueue) Len() int            { return len(q) }
func (q nodeQueue) Less(i, j int) bool  { return q[i].priority < q[j].priority }
func (q nodeQueue) Swap(i, j int)       { q[i], q[j] = q[j], q[i] }
func (q *nodeQueue) Push(x interface{}) { *q = append(*q, x.(node)) }
func (q *nodeQueue) Pop() interface{} {
	old := *q
	n := len(old)
	item := old[n-1]
	*q = old[:n-1]
	return item
}
