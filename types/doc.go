// Copyright (c) AgentFlow Authors.
// Licensed under the MIT License.

/*
Package types 提供查询引擎核心的共享类型定义。

types 是最底层的公共包，不依赖任何内部包，为 router、llm、sandbox、
rag、research、domain、chat、workflow、engine 等上层模块提供统一的类型
契约，避免循环依赖。

# 核心类型

  - Message              — 对话消息（role / content）
  - TaskKind             — 路由目标枚举（Research / Code / Chat / RAG / Domain* / Workflow）
  - RoutingDecision      — 路由器产出的结构化决策
  - ToolRecommendation   — 路由推荐的工具及置信度
  - ResearchResult / Source — 研究管线结果
  - CodeResult           — 代码管线结果
  - RAGResult / Chunk    — 检索增强生成结果
  - ChatResult           — 对话结果
  - DomainResult         — 天气/金融/路线等领域管线结果
  - WorkflowPlan / TaskNode / ExecutionRecord — 工作流 DAG 及其执行状态
  - Error / ErrorCode / Kind — 结构化错误体系
*/
package types
