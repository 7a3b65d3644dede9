// Package goskills adapts github.com/smallnest/goskills packages into
// langchaingo tools.Tool values, so agentnode generators can call shell
// code, Python code, file I/O, a DuckDuckGo search, or a named custom
// script the same way they call any other tool.
//
//	pkg := mySkillPackage{}
//	tools, err := goskills.SkillsToTools(pkg)
package goskills
