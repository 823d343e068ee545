package tchip8

// Hook runs inside the console loop while the console is locked, so it must
// not call the exported methods of the console, CycleError aside.
type Hook func(console *Console)

// AddBeforeFrameHook adds a hook that will run before every frame of the console
func (console *Console) AddBeforeFrameHook(h Hook) int {
	console.beforeFrameHooks = append(console.beforeFrameHooks, h)

	return len(console.beforeFrameHooks)
}

// AddBeforeCycleHook adds a hook that will run before every cycle of the CPU
func (console *Console) AddBeforeCycleHook(h Hook) int {
	console.beforeCycleHooks = append(console.beforeCycleHooks, h)

	return len(console.beforeCycleHooks)
}

// AddAfterCycleHook adds a hook that will run after every cycle of the CPU
func (console *Console) AddAfterCycleHook(h Hook) int {
	console.afterCycleHooks = append(console.afterCycleHooks, h)

	return len(console.afterCycleHooks)
}

// AddAfterFrameHook adds a hook that will run after every frame of the console
func (console *Console) AddAfterFrameHook(h Hook) int {
	console.afterFrameHooks = append(console.afterFrameHooks, h)

	return len(console.afterFrameHooks)
}

// AddErrorHook adds a hook that will run when a cycle fails
func (console *Console) AddErrorHook(h Hook) int {
	console.errorHooks = append(console.errorHooks, h)

	return len(console.errorHooks)
}

func (console *Console) runBeforeFrameHooks() {
	console.runHooks(console.beforeFrameHooks)
}

func (console *Console) runBeforeCycleHooks() {
	console.runHooks(console.beforeCycleHooks)
}

func (console *Console) runAfterCycleHooks() {
	console.runHooks(console.afterCycleHooks)
}

func (console *Console) runAfterFrameHooks() {
	console.runHooks(console.afterFrameHooks)
}

func (console *Console) runErrorHooks() {
	console.runHooks(console.errorHooks)
}

func (console *Console) runHooks(hooks []Hook) {
	for _, h := range hooks {
		h(console)
	}
}
