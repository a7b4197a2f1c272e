package swarm

import "fmt"

// Decompose builds the three-tier DAG a swarm run executes: one
// dependency-free plan task, numExecute execute tasks each depending on
// the plan, and one synthesize task depending on every execute task.
func Decompose(goal string, numExecute int) []*SubTask {
	if numExecute < 1 {
		numExecute = 1
	}

	plan := &SubTask{
		ID:          "plan",
		Description: "plan: " + goal,
		Role:        RolePlan,
		Status:      StatusPending,
	}

	execIDs := make([]string, numExecute)
	tasks := []*SubTask{plan}
	for i := 1; i <= numExecute; i++ {
		id := fmt.Sprintf("execute-%d", i)
		execIDs[i-1] = id
		tasks = append(tasks, &SubTask{
			ID:           id,
			Description:  fmt.Sprintf("execute part %d of: %s", i, goal),
			Dependencies: []string{plan.ID},
			Role:         RoleExecute,
			Status:       StatusPending,
		})
	}

	tasks = append(tasks, &SubTask{
		ID:           "synthesize",
		Description:  "synthesize: " + goal,
		Dependencies: execIDs,
		Role:         RoleSynthesize,
		Status:       StatusPending,
	})
	return tasks
}

// AssignWorkers assigns each task to a worker round-robin, in the order
// tasks are given.
func AssignWorkers(tasks []*SubTask, workers []Worker) error {
	if len(workers) == 0 {
		return ErrNoWorkers
	}
	for i, t := range tasks {
		t.AssignedWorker = workers[i%len(workers)].ID()
	}
	return nil
}

// ValidateDAG reports ErrCycleDetected if tasks' dependencies do not
// form a valid DAG, via Kahn's algorithm: a topological order exists
// iff every task eventually reaches indegree zero.
func ValidateDAG(tasks []*SubTask) error {
	indegree := map[string]int{}
	dependents := map[string][]string{}
	byID := map[string]*SubTask{}
	for _, t := range tasks {
		byID[t.ID] = t
		indegree[t.ID] = len(t.Dependencies)
	}
	for _, t := range tasks {
		for _, dep := range t.Dependencies {
			dependents[dep] = append(dependents[dep], t.ID)
		}
	}

	var queue []string
	for id, deg := range indegree {
		if deg == 0 {
			queue = append(queue, id)
		}
	}

	processed := 0
	for len(queue) > 0 {
		id := queue[0]
		queue = queue[1:]
		processed++
		for _, dep := range dependents[id] {
			indegree[dep]--
			if indegree[dep] == 0 {
				queue = append(queue, dep)
			}
		}
	}

	if processed != len(tasks) {
		return ErrCycleDetected
	}
	return nil
}
