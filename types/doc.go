/*
Package types defines subdig's information model. Which is rather simple and
mainly revolves around [Task] and its probe [Status]: a Task is one subdomain
label from a wordlist on its way from [Pending] to exactly one of the terminal
verdicts [Resolved], [Timeout], or [CantResolve].

Please keep in mind that subdig is inherently concurrent: many names are in
flight at any time and their verdicts travel through channels. Tasks are
therefore plain values with copy-on-update semantics ([Task.WithStatus],
[Task.WithAddrs]) instead of shared mutable state, which not only avoids a
locking mess, but also tons of subtle bugs.
*/
package types
